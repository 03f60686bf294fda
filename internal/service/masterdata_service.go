package service

import (
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
)

// MasterDataSource 主数据只读来源
// 校验引擎和目录服务只依赖该接口，便于测试时用内存实现替换
type MasterDataSource interface {
	ListActive(dataType string) ([]model.MasterDataEntry, error)
	ListDataTypes() ([]string, error)
}

type MasterDataService struct {
	repo *repository.MasterDataRepository
}

func NewMasterDataService(repo *repository.MasterDataRepository) *MasterDataService {
	return &MasterDataService{repo: repo}
}

// ListActive 查询指定类型的启用主数据，未知类型返回空列表
func (s *MasterDataService) ListActive(dataType string) ([]model.MasterDataEntry, error) {
	return s.repo.FindActiveByDataType(dataType)
}

// ListDataTypes 查询所有已存在的主数据类型
func (s *MasterDataService) ListDataTypes() ([]string, error) {
	return s.repo.ListDataTypes()
}

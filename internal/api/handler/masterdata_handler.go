package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

type MasterDataHandler struct {
	masterDataService *service.MasterDataService
}

func NewMasterDataHandler(masterDataService *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{masterDataService: masterDataService}
}

// ListDataTypes 查询所有主数据类型
// GET /api/master-data/types
func (h *MasterDataHandler) ListDataTypes(c *gin.Context) {
	types, err := h.masterDataService.ListDataTypes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(types))
}

// ListEntries 查询指定类型的启用主数据
// GET /api/master-data/entries/:dataType
func (h *MasterDataHandler) ListEntries(c *gin.Context) {
	entries, err := h.masterDataService.ListActive(c.Param("dataType"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(entries))
}

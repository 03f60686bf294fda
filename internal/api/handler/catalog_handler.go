package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// parseUintParam 解析路径中的数字ID
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的"+name+"参数")
		return 0, false
	}
	return uint(value), true
}

// ListCatalogs 查询服务目录列表
// GET /api/catalogs
func (h *CatalogHandler) ListCatalogs(c *gin.Context) {
	catalogs, err := h.catalogService.ListCatalogs()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(catalogs))
}

// ListItems 查询目录下的服务项
// GET /api/catalogs/:id/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	catalogID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.catalogService.GetCatalog(catalogID); err != nil {
		respondError(c, err)
		return
	}
	items, err := h.catalogService.ListItems(catalogID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(items))
}

// GetItem 查询服务项详情
// GET /api/catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	item, err := h.catalogService.GetItem(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(item))
}

// ListTemplates 查询服务项下的模板
// GET /api/catalog/items/:id/templates
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.catalogService.GetItem(itemID); err != nil {
		respondError(c, err)
		return
	}
	templates, err := h.catalogService.ListTemplates(itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(templates))
}

// ListItemFields 查询服务项提单表单的字段定义（选项已解析）
// GET /api/catalog/items/:id/fields?template_id=
func (h *CatalogHandler) ListItemFields(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var templateID *uint
	if raw := c.Query("template_id"); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			model.HandleError(c, http.StatusBadRequest, err, "无效的template_id参数")
			return
		}
		id := uint(value)
		templateID = &id
	}

	fields, err := h.catalogService.ListItemFields(itemID, templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(fields))
}

// ---- 管理端 ----

// CreateCatalog 创建服务目录
// POST /api/admin/catalogs
func (h *CatalogHandler) CreateCatalog(c *gin.Context) {
	var catalog model.Catalog
	if err := c.ShouldBindJSON(&catalog); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的目录数据")
		return
	}
	if err := h.catalogService.CreateCatalog(&catalog); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(catalog))
}

// UpdateCatalog 更新服务目录
// PUT /api/admin/catalogs/:id
func (h *CatalogHandler) UpdateCatalog(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var catalog model.Catalog
	if err := c.ShouldBindJSON(&catalog); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的目录数据")
		return
	}
	catalog.ID = id
	if err := h.catalogService.UpdateCatalog(&catalog); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(catalog))
}

// DeleteCatalog 删除服务目录
// DELETE /api/admin/catalogs/:id
func (h *CatalogHandler) DeleteCatalog(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCatalog(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// CreateItem 创建服务项
// POST /api/admin/items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var item model.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的服务项数据")
		return
	}
	if err := h.catalogService.CreateItem(&item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(item))
}

// UpdateItem 更新服务项
// PUT /api/admin/items/:id
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var item model.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的服务项数据")
		return
	}
	item.ID = id
	if err := h.catalogService.UpdateItem(&item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(item))
}

// DeleteItem 删除服务项
// DELETE /api/admin/items/:id
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteItem(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// CreateTemplate 创建模板
// POST /api/admin/templates
func (h *CatalogHandler) CreateTemplate(c *gin.Context) {
	var template model.Template
	if err := c.ShouldBindJSON(&template); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的模板数据")
		return
	}
	if err := h.catalogService.CreateTemplate(&template); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(template))
}

// UpdateTemplate 更新模板
// PUT /api/admin/templates/:id
func (h *CatalogHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var template model.Template
	if err := c.ShouldBindJSON(&template); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的模板数据")
		return
	}
	template.ID = id
	if err := h.catalogService.UpdateTemplate(&template); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(template))
}

// DeleteTemplate 删除模板
// DELETE /api/admin/templates/:id
func (h *CatalogHandler) DeleteTemplate(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteTemplate(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// CreateField 创建字段定义
// POST /api/admin/fields
func (h *CatalogHandler) CreateField(c *gin.Context) {
	var def model.FieldDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的字段定义")
		return
	}
	if err := h.catalogService.CreateField(&def); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(def))
}

// UpdateField 更新字段定义
// PUT /api/admin/fields/:id
func (h *CatalogHandler) UpdateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var def model.FieldDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的字段定义")
		return
	}
	def.ID = id
	if err := h.catalogService.UpdateField(&def); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(def))
}

// DeprecateField 废弃字段定义
// POST /api/admin/fields/:id/deprecate
func (h *CatalogHandler) DeprecateField(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeprecateField(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// ListFields 查询归属方下的字段定义
// GET /api/admin/fields?owner_type=item&owner_id=1&include_deprecated=true
func (h *CatalogHandler) ListFields(c *gin.Context) {
	ownerType := model.OwnerType(c.Query("owner_type"))
	ownerID, err := strconv.ParseUint(c.Query("owner_id"), 10, 32)
	if err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的owner_id参数")
		return
	}
	includeDeprecated := c.Query("include_deprecated") == "true"

	defs, serr := h.catalogService.ListFields(model.OwnerRef{Type: ownerType, ID: uint(ownerID)}, includeDeprecated)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, model.Success(defs))
}

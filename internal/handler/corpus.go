// internal/handler/corpus.go - 语料库HTTP API处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/service"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/response"
)

// CorpusHandler 语料库HTTP处理器
type CorpusHandler struct {
	corpusService service.CorpusService
	logger        logger.Logger
}

// NewCorpusHandler 创建语料库处理器
func NewCorpusHandler(corpusService service.CorpusService, logger logger.Logger) *CorpusHandler {
	return &CorpusHandler{
		corpusService: corpusService,
		logger:        logger,
	}
}

// InsertEntry 追加语料条目
// @Summary 追加语料条目
// @Description 校验并追加一条语料，签名键和复杂度由服务端计算
// @Tags corpus
// @Accept json
// @Produce json
// @Param request body dto.InsertCorpusRequest true "语料条目"
// @Success 200 {object} response.Response[dto.CorpusEntryData] "成功"
// @Failure 422 {object} response.Response[any] "条目校验失败"
// @Router /synthesis-tracker/api/v1/corpus [post]
func (h *CorpusHandler) InsertEntry(c *gin.Context) {
	var req dto.InsertCorpusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	entry, err := h.corpusService.Insert(&req)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.CorpusEntryData{Entry: entry})
}

// QueryEntries 分页查询语料库
// @Summary 查询语料库
// @Description 按名称前缀、最低分和签名键过滤，最新优先分页返回
// @Tags corpus
// @Produce json
// @Param namePrefix query string false "函数名前缀"
// @Param minScore query number false "最低通过率"
// @Param signatureKey query string false "归一化签名键"
// @Param limit query int false "页大小，默认20"
// @Param offset query int false "偏移量"
// @Success 200 {object} response.Response[dto.CorpusPageData] "成功"
// @Router /synthesis-tracker/api/v1/corpus [get]
func (h *CorpusHandler) QueryEntries(c *gin.Context) {
	var req dto.QueryCorpusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	page, err := h.corpusService.Query(&req)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, page)
}

// BestEntries 按签名键取最优语料
// @Summary 最优语料
// @Description 返回指定签名键下得分最高的k条语料
// @Tags corpus
// @Produce json
// @Param signatureKey query string true "归一化签名键"
// @Param k query int false "返回条数，默认10"
// @Success 200 {object} response.Response[dto.CorpusListData] "成功"
// @Router /synthesis-tracker/api/v1/corpus/best [get]
func (h *CorpusHandler) BestEntries(c *gin.Context) {
	var req dto.BestCorpusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	entries, err := h.corpusService.BestBySignature(req.SignatureKey, req.K)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.CorpusListData{Entries: entries})
}

// GetEntry 根据ID获取语料条目
// @Summary 获取语料条目
// @Tags corpus
// @Produce json
// @Param id path string true "条目ID"
// @Success 200 {object} response.Response[dto.CorpusEntryData] "成功"
// @Failure 404 {object} response.Response[any] "条目不存在"
// @Router /synthesis-tracker/api/v1/corpus/{id} [get]
func (h *CorpusHandler) GetEntry(c *gin.Context) {
	id := c.Param("id")
	entry, err := h.corpusService.GetByID(id)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.CorpusEntryData{Entry: entry})
}

// internal/handler/run.go - 运行元数据和种子溯源HTTP API处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/service"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/response"
)

// RunHandler 运行元数据和种子溯源HTTP处理器
type RunHandler struct {
	provenanceService service.ProvenanceService
	logger            logger.Logger
}

// NewRunHandler 创建溯源处理器
func NewRunHandler(provenanceService service.ProvenanceService, logger logger.Logger) *RunHandler {
	return &RunHandler{
		provenanceService: provenanceService,
		logger:            logger,
	}
}

// RecordRun 记录运行配置快照
// @Summary 记录运行
// @Description 记录一次合成运行的配置快照，runID必须唯一
// @Tags runs
// @Accept json
// @Produce json
// @Param request body dto.RecordRunRequest true "运行配置"
// @Success 200 {object} response.Response[dto.RunMetaData] "成功"
// @Failure 409 {object} response.Response[any] "runID已存在"
// @Router /synthesis-tracker/api/v1/runs [post]
func (h *RunHandler) RecordRun(c *gin.Context) {
	var req dto.RecordRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	meta, err := h.provenanceService.RecordRun(&req)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.RunMetaData{Run: meta})
}

// GetLatestRun 获取最近一次运行
// @Summary 最近一次运行
// @Tags runs
// @Produce json
// @Success 200 {object} response.Response[dto.RunMetaData] "成功"
// @Failure 404 {object} response.Response[any] "尚无运行记录"
// @Router /synthesis-tracker/api/v1/runs/latest [get]
func (h *RunHandler) GetLatestRun(c *gin.Context) {
	meta, err := h.provenanceService.GetLatestRunMeta()
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.RunMetaData{Run: meta})
}

// GetRun 根据runID获取运行元数据
// @Summary 获取运行
// @Tags runs
// @Produce json
// @Param runId path string true "运行ID"
// @Success 200 {object} response.Response[dto.RunMetaData] "成功"
// @Failure 404 {object} response.Response[any] "运行不存在"
// @Router /synthesis-tracker/api/v1/runs/{runId} [get]
func (h *RunHandler) GetRun(c *gin.Context) {
	runID := c.Param("runId")
	meta, err := h.provenanceService.GetRunMeta(runID)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.RunMetaData{Run: meta})
}

// RecordSeed 记录种子使用
// @Summary 记录种子使用
// @Description 记录某次运行把哪条语料用作了种子
// @Tags runs
// @Accept json
// @Produce json
// @Param runId path string true "运行ID"
// @Param request body dto.RecordSeedRequest true "种子使用记录"
// @Success 200 {object} response.Response[dto.SeedData] "成功"
// @Failure 422 {object} response.Response[any] "运行或来源条目不存在"
// @Router /synthesis-tracker/api/v1/runs/{runId}/seeds [post]
func (h *RunHandler) RecordSeed(c *gin.Context) {
	runID := c.Param("runId")
	var req dto.RecordSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	seed, err := h.provenanceService.RecordSeedUsage(runID, &req)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.SeedData{Seed: seed})
}

// ListSeeds 列出运行使用的全部种子
// @Summary 运行的种子列表
// @Tags runs
// @Produce json
// @Param runId path string true "运行ID"
// @Success 200 {object} response.Response[dto.SeedListData] "成功"
// @Router /synthesis-tracker/api/v1/runs/{runId}/seeds [get]
func (h *RunHandler) ListSeeds(c *gin.Context) {
	runID := c.Param("runId")
	seeds, err := h.provenanceService.ListSeedsForRun(runID)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.SeedListData{RunID: runID, Seeds: seeds})
}

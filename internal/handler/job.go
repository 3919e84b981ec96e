// internal/handler/job.go - 合成任务HTTP API处理器
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"synthesis-tracker/internal/dto"
	"synthesis-tracker/internal/errs"
	"synthesis-tracker/internal/model"
	"synthesis-tracker/internal/registry"
	"synthesis-tracker/internal/service"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/response"
)

// JobHandler 合成任务HTTP处理器
type JobHandler struct {
	trackerService service.TrackerService
	logger         logger.Logger
}

// NewJobHandler 创建合成任务处理器
func NewJobHandler(trackerService service.TrackerService, logger logger.Logger) *JobHandler {
	return &JobHandler{
		trackerService: trackerService,
		logger:         logger,
	}
}

// statusForError 将领域错误映射为HTTP状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, errs.ErrJobNotFound),
		errors.Is(err, errs.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrAlreadyTerminal),
		errors.Is(err, errs.ErrDuplicateRun):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidEntry),
		errors.Is(err, errs.ErrUnknownRun),
		errors.Is(err, errs.ErrUnknownSourceEntry):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// SubmitJob 提交合成任务
// @Summary 提交合成任务
// @Description 创建一个处于queued阶段的合成任务
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body dto.SubmitJobRequest true "提交请求"
// @Success 200 {object} response.Response[dto.SubmitJobData] "成功"
// @Failure 400 {object} response.Response[any] "请求参数错误"
// @Router /synthesis-tracker/api/v1/jobs [post]
func (h *JobHandler) SubmitJob(c *gin.Context) {
	var req dto.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	job, err := h.trackerService.Submit(req.RunID)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.SubmitJobData{Job: job})
}

// GetJob 查询任务当前快照
// @Summary 查询任务
// @Tags jobs
// @Produce json
// @Param jobId path string true "任务ID"
// @Success 200 {object} response.Response[dto.JobData] "成功"
// @Failure 404 {object} response.Response[any] "任务不存在"
// @Router /synthesis-tracker/api/v1/jobs/{jobId} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, err := h.trackerService.GetJob(jobID)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.JobData{Job: job})
}

// GetJobHistory 查询任务阶段变迁历史
// @Summary 查询任务历史
// @Tags jobs
// @Produce json
// @Param jobId path string true "任务ID"
// @Success 200 {object} response.Response[dto.JobHistoryData] "成功"
// @Failure 404 {object} response.Response[any] "任务不存在"
// @Router /synthesis-tracker/api/v1/jobs/{jobId}/history [get]
func (h *JobHandler) GetJobHistory(c *gin.Context) {
	jobID := c.Param("jobId")
	transitions, err := h.trackerService.History(jobID)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	if transitions == nil {
		transitions = []*model.JobTransition{}
	}
	response.OkJson(c, dto.JobHistoryData{JobID: jobID, Transitions: transitions})
}

// AdvanceJob 推进任务阶段
// @Summary 推进任务阶段
// @Description 将任务推进到指定非终态阶段并更新进度
// @Tags jobs
// @Accept json
// @Produce json
// @Param jobId path string true "任务ID"
// @Param request body dto.AdvanceJobRequest true "推进请求"
// @Success 200 {object} response.Response[dto.JobData] "成功"
// @Failure 409 {object} response.Response[any] "非法阶段变迁"
// @Router /synthesis-tracker/api/v1/jobs/{jobId}/advance [post]
func (h *JobHandler) AdvanceJob(c *gin.Context) {
	jobID := c.Param("jobId")
	var req dto.AdvanceJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	job, err := h.trackerService.Advance(jobID, registry.StageUpdate{
		Stage:                         model.Stage(req.Stage),
		Percentage:                    req.Percentage,
		Message:                       req.Message,
		EstimatedTimeRemainingSeconds: req.EstimatedTimeRemainingSeconds,
		Complexity:                    req.Complexity,
	})
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.JobData{Job: job})
}

// CompleteJob 完成任务
// @Summary 完成任务
// @Description 将任务置为complete，结果代码写入语料库。
// @Tags jobs
// @Accept json
// @Produce json
// @Param jobId path string true "任务ID"
// @Param request body dto.CompleteJobRequest true "完成请求"
// @Success 200 {object} response.Response[dto.JobData] "成功"
// @Failure 409 {object} response.Response[any] "任务已处于终态"
// @Router /synthesis-tracker/api/v1/jobs/{jobId}/complete [post]
func (h *JobHandler) CompleteJob(c *gin.Context) {
	jobID := c.Param("jobId")

	// 请求体读一次，结构化绑定和宽松的tests字段提取共用
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	result := &model.SynthesisResult{
		Code:         gjson.GetBytes(body, "result.code").String(),
		Language:     gjson.GetBytes(body, "result.language").String(),
		FunctionName: gjson.GetBytes(body, "result.functionName").String(),
		Description:  gjson.GetBytes(body, "result.description").String(),
	}
	if result.Code == "" || result.FunctionName == "" {
		h.logger.Error("complete request for job %s missing result payload", jobID)
		response.Error(c, http.StatusBadRequest, errs.NewMissingParamError("result"))
		return
	}

	// tests字段可选，缺省表示未经测试，按0/0归档（得分为0），
	// 不把未验证的结果当作满分条目。
	passed, total := 0, 0
	if t := gjson.GetBytes(body, "tests.total"); t.Exists() {
		total = int(t.Int())
		passed = total
	}
	if p := gjson.GetBytes(body, "tests.passed"); p.Exists() {
		passed = int(p.Int())
	}
	message := gjson.GetBytes(body, "message").String()

	job, err := h.trackerService.Complete(jobID, message, result, passed, total)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.JobData{Job: job})
}

// FailJob 任务失败
// @Summary 任务失败
// @Description 将任务置为error终态
// @Tags jobs
// @Accept json
// @Produce json
// @Param jobId path string true "任务ID"
// @Param request body dto.FailJobRequest true "失败请求"
// @Success 200 {object} response.Response[dto.JobData] "成功"
// @Failure 409 {object} response.Response[any] "任务已处于终态"
// @Router /synthesis-tracker/api/v1/jobs/{jobId}/fail [post]
func (h *JobHandler) FailJob(c *gin.Context) {
	jobID := c.Param("jobId")
	var req dto.FailJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	job, err := h.trackerService.Fail(jobID, req.Message, req.Detail)
	if err != nil {
		response.Error(c, statusForError(err), err)
		return
	}
	response.OkJson(c, dto.JobData{Job: job})
}

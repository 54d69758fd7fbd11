package service

import (
	"strconv"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// GenerateRequestDTO 生成请求
type GenerateRequestDTO struct {
	AccountID   string `json:"accountId"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// WorkItemDTO 生成记录响应
type WorkItemDTO struct {
	ID          string    `json:"id"`
	JobTitle    string    `json:"jobTitle"`
	CompanyName string    `json:"companyName"`
	CVData      string    `json:"generatedCvData"`
	CoverLetter string    `json:"generatedCoverLetter"`
	TemplateID  string    `json:"templateId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GenerateReplyDTO 生成响应
type GenerateReplyDTO struct {
	Duplicate bool         `json:"duplicate"`
	Message   string       `json:"message,omitempty"`
	Data      *WorkItemDTO `json:"data"`
}

// ListReplyDTO 分页列表响应
type ListReplyDTO struct {
	Data []*WorkItemDTO `json:"data"`
	Meta struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		LastPage int64 `json:"lastPage"`
	} `json:"meta"`
}

// ApplicationService 求职申请服务（计量消耗入口）
type ApplicationService struct {
	usage     *biz.UsageUseCase
	workItems *biz.WorkItemUseCase
	log       *log.Helper
}

// NewApplicationService 创建 ApplicationService
func NewApplicationService(usage *biz.UsageUseCase, workItems *biz.WorkItemUseCase, logger log.Logger) *ApplicationService {
	return &ApplicationService{
		usage:     usage,
		workItems: workItems,
		log:       log.NewHelper(logger),
	}
}

// Generate 处理职位描述并生成定制 CV / 求职信
func (s *ApplicationService) Generate(ctx khttp.Context) error {
	var req GenerateRequestDTO
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.AccountID == "" || req.Description == "" {
		return creditErrors.ErrorInvalidArgument("accountId and description are required")
	}

	item, duplicate, err := s.usage.Generate(ctx, req.AccountID, &biz.GenerateRequest{
		JobTitle:       req.Title,
		CompanyName:    req.Company,
		JobDescription: req.Description,
	})
	if err != nil {
		s.log.Errorf("Generate failed: account=%s error=%v", req.AccountID, err)
		return err
	}

	reply := &GenerateReplyDTO{
		Duplicate: duplicate,
		Data:      toWorkItemDTO(item),
	}
	if duplicate {
		reply.Message = "You have already generated a CV for this job description."
	}
	return ctx.Result(200, reply)
}

// ListApplications 分页获取当前账户的生成记录
func (s *ApplicationService) ListApplications(ctx khttp.Context) error {
	accountID := ctx.Query().Get("accountId")
	if accountID == "" {
		return creditErrors.ErrorInvalidArgument("accountId is required")
	}
	page, pageSize := pagination(ctx)

	items, total, err := s.workItems.ListWorkItems(ctx, accountID, page, pageSize)
	if err != nil {
		s.log.Errorf("ListApplications failed: account=%s error=%v", accountID, err)
		return err
	}

	reply := &ListReplyDTO{Data: make([]*WorkItemDTO, 0, len(items))}
	for _, item := range items {
		reply.Data = append(reply.Data, toWorkItemDTO(item))
	}
	reply.Meta.Total = total
	reply.Meta.Page = page
	reply.Meta.LastPage = (total + int64(pageSize) - 1) / int64(pageSize)
	return ctx.Result(200, reply)
}

// GetApplication 按 ID 获取生成记录（校验归属）
func (s *ApplicationService) GetApplication(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")
	accountID := ctx.Query().Get("accountId")

	item, err := s.workItems.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}
	// 归属不符统一按不存在处理，不向其他账户暴露记录是否存在
	if item == nil || accountID == "" || item.AccountID != accountID {
		return creditErrors.ErrorWorkItemNotFound("application history not found")
	}

	return ctx.Result(200, toWorkItemDTO(item))
}

// pagination 解析分页参数
func pagination(ctx khttp.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(ctx.Query().Get("limit"))
	if pageSize <= 0 {
		pageSize = 10
	}
	return page, pageSize
}

// toWorkItemDTO 领域对象转响应 DTO
func toWorkItemDTO(item *biz.WorkItem) *WorkItemDTO {
	if item == nil {
		return nil
	}
	return &WorkItemDTO{
		ID:          item.WorkItemID,
		JobTitle:    item.JobTitle,
		CompanyName: item.CompanyName,
		CVData:      item.GeneratedCVData,
		CoverLetter: item.GeneratedCoverText,
		TemplateID:  item.TemplateID,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
	}
}

package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/lilstex/elevate-cv/internal/biz"
	creditErrors "github.com/lilstex/elevate-cv/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHTTPContext 只实现测试用到的路径/查询参数和结果捕获
type stubHTTPContext struct {
	context.Context
	vars  url.Values
	query url.Values
	code  int
	value interface{}
}

func newStubHTTPContext(vars, query url.Values) *stubHTTPContext {
	if vars == nil {
		vars = url.Values{}
	}
	if query == nil {
		query = url.Values{}
	}
	return &stubHTTPContext{Context: context.Background(), vars: vars, query: query}
}

func (c *stubHTTPContext) Vars() url.Values          { return c.vars }
func (c *stubHTTPContext) Query() url.Values         { return c.query }
func (c *stubHTTPContext) Form() url.Values          { return url.Values{} }
func (c *stubHTTPContext) Header() http.Header       { return http.Header{} }
func (c *stubHTTPContext) Request() *http.Request    { return nil }
func (c *stubHTTPContext) Response() http.ResponseWriter {
	return nil
}
func (c *stubHTTPContext) Middleware(h middleware.Handler) middleware.Handler { return h }
func (c *stubHTTPContext) Bind(interface{}) error                             { return nil }
func (c *stubHTTPContext) BindVars(interface{}) error                         { return nil }
func (c *stubHTTPContext) BindQuery(interface{}) error                        { return nil }
func (c *stubHTTPContext) BindForm(interface{}) error                         { return nil }
func (c *stubHTTPContext) Returns(_ interface{}, err error) error             { return err }
func (c *stubHTTPContext) Result(code int, v interface{}) error {
	c.code = code
	c.value = v
	return nil
}
func (c *stubHTTPContext) JSON(code int, v interface{}) error {
	c.code = code
	c.value = v
	return nil
}
func (c *stubHTTPContext) XML(int, interface{}) error               { return nil }
func (c *stubHTTPContext) String(int, string) error                 { return nil }
func (c *stubHTTPContext) Blob(int, string, []byte) error           { return nil }
func (c *stubHTTPContext) Stream(int, string, io.Reader) error      { return nil }
func (c *stubHTTPContext) Reset(http.ResponseWriter, *http.Request) {}

type stubWorkItemRepo struct {
	items map[string]*biz.WorkItem // keyed by WorkItemID
}

func (s *stubWorkItemRepo) Create(_ context.Context, _ *biz.WorkItem) (bool, error) {
	return false, nil
}

func (s *stubWorkItemRepo) GetByFingerprint(_ context.Context, _, _ string) (*biz.WorkItem, error) {
	return nil, nil
}

func (s *stubWorkItemRepo) GetByID(_ context.Context, workItemID string) (*biz.WorkItem, error) {
	return s.items[workItemID], nil
}

func (s *stubWorkItemRepo) ListByAccount(_ context.Context, _ string, _, _ int) ([]*biz.WorkItem, int64, error) {
	return nil, 0, nil
}

func newApplicationFixture() *ApplicationService {
	logger := log.NewStdLogger(io.Discard)
	repo := &stubWorkItemRepo{items: map[string]*biz.WorkItem{
		"item-1": {WorkItemID: "item-1", AccountID: "acc-1", JobTitle: "Backend Engineer"},
	}}
	return NewApplicationService(nil, biz.NewWorkItemUseCase(repo, logger), logger)
}

func TestGetApplication_OwnerFetchesItem(t *testing.T) {
	svc := newApplicationFixture()
	ctx := newStubHTTPContext(
		url.Values{"id": {"item-1"}},
		url.Values{"accountId": {"acc-1"}},
	)

	require.NoError(t, svc.GetApplication(ctx))
	assert.Equal(t, 200, ctx.code)

	dto, ok := ctx.value.(*WorkItemDTO)
	require.True(t, ok)
	assert.Equal(t, "item-1", dto.ID)
}

func TestGetApplication_ForeignAccountSeesNotFound(t *testing.T) {
	svc := newApplicationFixture()

	// 归属不符的请求和真正不存在的记录不可区分
	ctx := newStubHTTPContext(
		url.Values{"id": {"item-1"}},
		url.Values{"accountId": {"acc-2"}},
	)
	err := svc.GetApplication(ctx)
	require.Error(t, err)
	assert.True(t, creditErrors.IsWorkItemNotFound(err))

	missing := newStubHTTPContext(
		url.Values{"id": {"no-such-item"}},
		url.Values{"accountId": {"acc-1"}},
	)
	err = svc.GetApplication(missing)
	require.Error(t, err)
	assert.True(t, creditErrors.IsWorkItemNotFound(err))
}

func TestGetApplication_MissingAccountSeesNotFound(t *testing.T) {
	svc := newApplicationFixture()
	ctx := newStubHTTPContext(url.Values{"id": {"item-1"}}, nil)

	err := svc.GetApplication(ctx)
	require.Error(t, err)
	assert.True(t, creditErrors.IsWorkItemNotFound(err))
}

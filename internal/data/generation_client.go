package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lilstex/elevate-cv/internal/biz"
	"github.com/lilstex/elevate-cv/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-resty/resty/v2"
)

const generationPrompt = `You are an expert CV writer. Using the job description below, produce a JSON object
with the fields "professionalSummary" (string), "refinedExperience" (array of
{"role","company","highlights"}), "relevantSkills" (array of strings) and
"coverLetter" (string). Respond with JSON only.

Job title: %s
Company: %s
Job description:
%s`

// chatCompletionRequest OpenAI 兼容的请求体
type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

// chatCompletionReply OpenAI 兼容的响应体
type chatCompletionReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// tailoredContent 模型返回的结构化内容
type tailoredContent struct {
	ProfessionalSummary string `json:"professionalSummary"`
	RefinedExperience   []struct {
		Role       string   `json:"role"`
		Company    string   `json:"company"`
		Highlights []string `json:"highlights"`
	} `json:"refinedExperience"`
	RelevantSkills []string `json:"relevantSkills"`
	CoverLetter    string   `json:"coverLetter"`
}

// generationClient 上游内容生成客户端（OpenAI 兼容接口）
type generationClient struct {
	client *resty.Client
	model  string
	log    *log.Helper
}

// NewGenerationClient 创建内容生成客户端（返回 biz.GenerationClient 接口）
func NewGenerationClient(c *conf.Bootstrap, logger log.Logger) biz.GenerationClient {
	timeout := 60 * time.Second
	baseURL := "https://api.openai.com/v1"
	model := "gpt-4o-mini"
	apiKey := ""
	if c.OpenAI != nil {
		if c.OpenAI.TimeoutSeconds > 0 {
			timeout = time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
		}
		if c.OpenAI.BaseURL != "" {
			baseURL = c.OpenAI.BaseURL
		}
		if c.OpenAI.Model != "" {
			model = c.OpenAI.Model
		}
		apiKey = c.OpenAI.APIKey
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &generationClient{
		client: client,
		model:  model,
		log:    log.NewHelper(logger),
	}
}

// GenerateTailored 调用上游生成定制内容
// 任何错误（含超时）都原样返回，由 UsageUseCase 走补偿
func (g *generationClient) GenerateTailored(ctx context.Context, req *biz.GenerateRequest) (*biz.GenerationOutput, error) {
	body := &chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(generationPrompt, req.JobTitle, req.CompanyName, req.JobDescription)},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	var reply chatCompletionReply
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&reply).
		Post("/chat/completions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("generation upstream returned %d: %s", resp.StatusCode(), resp.String())
	}
	if len(reply.Choices) == 0 {
		return nil, fmt.Errorf("generation upstream returned no choices")
	}

	var content tailoredContent
	if err := json.Unmarshal([]byte(reply.Choices[0].Message.Content), &content); err != nil {
		return nil, fmt.Errorf("generation upstream returned malformed content: %w", err)
	}

	coverLetter := content.CoverLetter
	content.CoverLetter = ""
	cvData, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	return &biz.GenerationOutput{
		CVData:      string(cvData),
		CoverLetter: coverLetter,
	}, nil
}

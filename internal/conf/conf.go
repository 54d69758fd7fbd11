package conf

// Bootstrap 应用启动配置（由 kratos config 从 yaml 扫描）
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Billing  *Billing  `json:"billing"`
	Gateways *Gateways `json:"gateways"`
	OpenAI   *OpenAI   `json:"openai"`
}

// Server 服务端配置
type Server struct {
	HTTP *HTTPServer `json:"http"`
}

// HTTPServer HTTP 服务配置
type HTTPServer struct {
	Network        string `json:"network"`
	Addr           string `json:"addr"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

// Data 数据层配置
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Rocketmq *Rocketmq `json:"rocketmq"`
}

// Database 数据库配置
type Database struct {
	Source string `json:"source"`
}

// Redis Redis 配置
type Redis struct {
	Addr                string `json:"addr"`
	ReadTimeoutSeconds  int64  `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int64  `json:"write_timeout_seconds"`
}

// Rocketmq RocketMQ 配置（未启用时消耗流水走同步落库）
type Rocketmq struct {
	Enabled     bool     `json:"enabled"`
	NameServers []string `json:"name_servers"`
	Topic       string   `json:"topic"`
	GroupName   string   `json:"group_name"`
	RetryTimes  int32    `json:"retry_times"`
}

// Billing 计费配置
type Billing struct {
	// UnitCost 单次生成消耗的积分数
	UnitCost int64 `json:"unit_cost"`
}

// Gateways 支付网关配置
type Gateways struct {
	Stripe   *StripeGateway   `json:"stripe"`
	Paystack *PaystackGateway `json:"paystack"`
	// FrontendURL 支付完成后的跳转地址前缀
	FrontendURL string `json:"frontend_url"`
}

// StripeGateway Stripe 配置
type StripeGateway struct {
	SecretKey     string `json:"secret_key"`
	WebhookSecret string `json:"webhook_secret"`
}

// PaystackGateway Paystack 配置
type PaystackGateway struct {
	SecretKey string `json:"secret_key"`
	BaseURL   string `json:"base_url"`
}

// OpenAI 内容生成服务配置
type OpenAI struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

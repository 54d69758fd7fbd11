package server

import (
	"time"

	"github.com/lilstex/elevate-cv/internal/conf"
	"github.com/lilstex/elevate-cv/internal/service"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer 创建 HTTP 服务器
func NewHTTPServer(c *conf.Bootstrap, app *service.ApplicationService, payment *service.PaymentService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Server != nil && c.Server.HTTP != nil {
		if c.Server.HTTP.Network != "" {
			opts = append(opts, http.Network(c.Server.HTTP.Network))
		}
		if c.Server.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.Server.HTTP.Addr))
		}
		if c.Server.HTTP.TimeoutSeconds > 0 {
			opts = append(opts, http.Timeout(time.Duration(c.Server.HTTP.TimeoutSeconds)*time.Second))
		}
	}
	srv := http.NewServer(opts...)

	r := srv.Route("/v1")
	r.POST("/application/generate", app.Generate)
	r.GET("/application", app.ListApplications)
	r.GET("/application/{id}", app.GetApplication)

	r.POST("/payment/topup", payment.TopUp)
	r.GET("/payment/plans", payment.ListPlans)
	r.POST("/payment/plans", payment.CreatePlan)
	r.PATCH("/payment/plans/{id}", payment.UpdatePlan)
	r.DELETE("/payment/plans/{id}", payment.DeactivatePlan)
	r.GET("/payment/balance", payment.GetBalance)
	r.GET("/payment/transactions", payment.ListTransactions)

	// webhook 签名校验基于原始请求体，绕过 JSON 编解码中间件
	srv.HandleFunc("/v1/payment/webhook/stripe", payment.StripeWebhook)
	srv.HandleFunc("/v1/payment/webhook/paystack", payment.PaystackWebhook)

	srv.Handle("/metrics", promhttp.Handler())
	return srv
}

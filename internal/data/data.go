package data

import (
	"fmt"
	"time"

	"github.com/lilstex/elevate-cv/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	redsyncgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewDB,
	NewRedis,
	NewRedsync,
	NewData,
	NewAccountRepo,
	NewLedgerEntryRepo,
	NewWorkItemRepo,
	NewPlanRepo,
	NewGenerationClient,
	NewStripeClient,
	NewPaystackClient,
)

// Data 数据层结构体
type Data struct {
	db      *gorm.DB
	rdb     *redis.Client
	mq      rocketmq.Producer // nil 时消耗流水同步落库
	mqTopic string
}

// NewDB 创建数据库连接
// TranslateError 让唯一约束冲突统一转成 gorm.ErrDuplicatedKey，
// 幂等闸门（provider_reference、(account_id, fingerprint)）依赖这个判定
func NewDB(c *conf.Bootstrap) (*gorm.DB, error) {
	if c.Data == nil || c.Data.Database == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	db, err := gorm.Open(mysql.Open(c.Data.Database.Source), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedis 创建 Redis 连接
func NewRedis(c *conf.Bootstrap) (*redis.Client, error) {
	if c.Data == nil || c.Data.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	var readTimeout, writeTimeout time.Duration
	if c.Data.Redis.ReadTimeoutSeconds > 0 {
		readTimeout = time.Duration(c.Data.Redis.ReadTimeoutSeconds) * time.Second
	}
	if c.Data.Redis.WriteTimeoutSeconds > 0 {
		writeTimeout = time.Duration(c.Data.Redis.WriteTimeoutSeconds) * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Data.Redis.Addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	// 测试连接
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewRedsync 创建分布式锁（仅套餐管理写路径使用，扣费热路径不加锁）
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	return redsync.New(redsyncgoredis.NewPool(rdb))
}

// newProducer 创建 RocketMQ 生产者（未启用时返回 nil）
func newProducer(c *conf.Bootstrap, logger log.Logger) rocketmq.Producer {
	if c.Data == nil || c.Data.Rocketmq == nil || !c.Data.Rocketmq.Enabled {
		return nil
	}
	p, err := rocketmq.NewProducer(
		producer.WithNsResolver(primitive.NewPassthroughResolver(c.Data.Rocketmq.NameServers)),
		producer.WithGroupName(c.Data.Rocketmq.GroupName),
		producer.WithRetry(int(c.Data.Rocketmq.RetryTimes)),
	)
	if err != nil {
		log.NewHelper(logger).Errorf("init rocketmq producer error: %v", err)
		return nil
	}
	if err := p.Start(); err != nil {
		log.NewHelper(logger).Errorf("start rocketmq producer error: %v", err)
		return nil
	}
	return p
}

// NewData 创建数据层实例
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	mq := newProducer(c, logger)

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		if err := rdb.Close(); err != nil {
			log.NewHelper(logger).Errorf("failed to close redis: %v", err)
		}
		if mq != nil {
			if err := mq.Shutdown(); err != nil {
				log.NewHelper(logger).Errorf("failed to shutdown rocketmq producer: %v", err)
			}
		}
	}

	topic := ""
	if c.Data != nil && c.Data.Rocketmq != nil {
		topic = c.Data.Rocketmq.Topic
	}

	return &Data{
		db:      db,
		rdb:     rdb,
		mq:      mq,
		mqTopic: topic,
	}, cleanup, nil
}

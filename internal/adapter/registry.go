package adapter

import (
	"fmt"

	"TimeLens/internal/adapter/assistant"
	"TimeLens/internal/adapter/vision"
	"TimeLens/internal/config"
	"TimeLens/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// 服务名常量，与 config.yaml 的 ai 段键名一致
const (
	ServiceVision    = "vision"
	ServiceAssistant = "assistant"
)

// Registry AI服务适配器注册表：按服务名持有已初始化的适配器实例
// 新增AI服务仅需在工厂map中添加一行
type Registry struct {
	cfg        *config.Config
	logger     *logrus.Logger
	visions    map[string]interfaces.VisionAdapter
	assistants map[string]interfaces.AssistantAdapter
}

// NewRegistry 从配置初始化所有已声明的AI服务适配器
func NewRegistry(cfg *config.Config, logger *logrus.Logger) *Registry {
	r := &Registry{
		cfg:        cfg,
		logger:     logger,
		visions:    make(map[string]interfaces.VisionAdapter),
		assistants: make(map[string]interfaces.AssistantAdapter),
	}

	// 工厂map：服务名→构造函数
	visionFactory := map[string]func(*config.AIServiceConfig, *logrus.Logger) interfaces.VisionAdapter{
		ServiceVision: vision.NewVisionAdapter,
	}
	assistantFactory := map[string]func(*config.AIServiceConfig, *logrus.Logger) interfaces.AssistantAdapter{
		ServiceAssistant: assistant.NewAssistantAdapter,
	}

	// 遍历配置中的AI服务，匹配工厂函数创建实例
	for name := range cfg.AI {
		svcCfg := cfg.AI[name]
		if f, ok := visionFactory[name]; ok {
			r.visions[name] = f(&svcCfg, logger)
			logger.WithField("service", name).Info("识别适配器初始化成功")
			continue
		}
		if f, ok := assistantFactory[name]; ok {
			r.assistants[name] = f(&svcCfg, logger)
			logger.WithField("service", name).Info("助手适配器初始化成功")
			continue
		}
		logger.WithField("service", name).Warn("配置中的AI服务无对应适配器，已跳过")
	}

	logger.WithFields(logrus.Fields{
		"visions":    interfaces.MapKeys(r.visions),
		"assistants": interfaces.MapKeys(r.assistants),
	}).Info("AI适配器注册表初始化完成")
	return r
}

// Vision 获取识别适配器实例
func (r *Registry) Vision() (interfaces.VisionAdapter, error) {
	a, ok := r.visions[ServiceVision]
	if !ok {
		return nil, fmt.Errorf("识别服务%s未配置（已配置：%v）", ServiceVision, interfaces.MapKeys(r.visions))
	}
	return a, nil
}

// Assistant 获取助手适配器实例
func (r *Registry) Assistant() (interfaces.AssistantAdapter, error) {
	a, ok := r.assistants[ServiceAssistant]
	if !ok {
		return nil, fmt.Errorf("助手服务%s未配置（已配置：%v）", ServiceAssistant, interfaces.MapKeys(r.assistants))
	}
	return a, nil
}

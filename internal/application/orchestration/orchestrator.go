package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"storyweave-api/internal/config"
	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/service"
	"storyweave-api/pkg/errors"
	"storyweave-api/pkg/logger"
	"storyweave-api/pkg/metrics"
)

var tracer = otel.Tracer("orchestration")

// RateLimiter 提供商调用配额接口，由 redis 滑动窗口限流器实现
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// Orchestrator 生成编排器。
// 每次生成：校验 → 解析提供商 → 带超时调用 → 结果归一化。
// 单次尝试不重试；提供商原始错误不会越过本层。
type Orchestrator struct {
	registry  *Registry
	validator *Validator
	selector  *Selector
	statuses  *StatusCache
	estimator *CostEstimator
	limiter   RateLimiter
	usage     service.UsageRecorder

	callTimeout time.Duration
	probeGroup  singleflight.Group
}

// NewOrchestrator 创建编排器。limiter 与 usage 可为 nil。
func NewOrchestrator(
	registry *Registry,
	statuses *StatusCache,
	cfg *config.AIConfig,
	limiter RateLimiter,
	usage service.UsageRecorder,
) *Orchestrator {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{
		registry:    registry,
		validator:   NewValidator(registry),
		selector:    NewSelector(registry, statuses, cfg.Selection),
		statuses:    statuses,
		estimator:   NewCostEstimator(registry),
		limiter:     limiter,
		usage:       usage,
		callTimeout: timeout,
	}
}

// Validator 请求校验器
func (o *Orchestrator) Validator() *Validator {
	return o.validator
}

// Estimator 成本估算器
func (o *Orchestrator) Estimator() *CostEstimator {
	return o.estimator
}

// GenerateText 生成故事文本
func (o *Orchestrator) GenerateText(ctx context.Context, req *entity.TextRequest) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.GenerateText")
	defer span.End()

	if err := o.validator.ValidateText(req); err != nil {
		return nil, err
	}

	result := o.invoke(ctx, entity.GenerationKindText, &req.RequestBase,
		func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
			return p.GenerateText(ctx, req)
		})
	o.recordUsage(ctx, entity.GenerationKindText, &req.RequestBase, result)
	return result, nil
}

// GenerateImage 生成场景插图
func (o *Orchestrator) GenerateImage(ctx context.Context, req *entity.ImageRequest) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.GenerateImage")
	defer span.End()

	if err := o.validator.ValidateImage(req); err != nil {
		return nil, err
	}

	result := o.invoke(ctx, entity.GenerationKindImage, &req.RequestBase,
		func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
			return p.GenerateImage(ctx, req)
		})
	o.recordUsage(ctx, entity.GenerationKindImage, &req.RequestBase, result)
	return result, nil
}

// GenerateAudio 生成旁白音频
func (o *Orchestrator) GenerateAudio(ctx context.Context, req *entity.AudioRequest) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.GenerateAudio")
	defer span.End()

	if err := o.validator.ValidateAudio(req); err != nil {
		return nil, err
	}

	result := o.invoke(ctx, entity.GenerationKindAudio, &req.RequestBase,
		func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
			return p.GenerateAudio(ctx, req)
		})
	o.recordUsage(ctx, entity.GenerationKindAudio, &req.RequestBase, result)
	return result, nil
}

// GenerateChoices 为既有情节生成后续选项
func (o *Orchestrator) GenerateChoices(ctx context.Context, req *entity.TextRequest, count int) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.GenerateChoices",
		trace.WithAttributes(attribute.Int("generation.choice_count", count)))
	defer span.End()

	if err := o.validator.ValidateChoices(req, count); err != nil {
		return nil, err
	}

	result := o.invoke(ctx, entity.GenerationKindChoices, &req.RequestBase,
		func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
			choices, err := p.GenerateChoices(ctx, req, count)
			if err != nil {
				return nil, err
			}
			return &entity.GenerationResult{
				Success: true,
				Choices: choices,
			}, nil
		})
	o.recordUsage(ctx, entity.GenerationKindChoices, &req.RequestBase, result)
	return result, nil
}

// GenerateCombined 组合生成。
// 文本为必选且先行，文本失败即终止；图像与音频并发执行，
// 子生成失败记录在分项中，不影响整体成功判定。
func (o *Orchestrator) GenerateCombined(ctx context.Context, req *entity.CombinedRequest) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.GenerateCombined")
	defer span.End()

	if err := o.validator.ValidateCombined(req); err != nil {
		return nil, err
	}

	started := time.Now()
	breakdown := &entity.CombinedBreakdown{}

	textResult := o.invoke(ctx, entity.GenerationKindText, &req.Text.RequestBase,
		func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
			return p.GenerateText(ctx, &req.Text)
		})
	o.recordUsage(ctx, entity.GenerationKindText, &req.Text.RequestBase, textResult)
	breakdown.TextGeneration = textResult

	if !textResult.Success {
		result := entity.FailedResult(textResult.Provider, textResult.Error, time.Since(started))
		result.Breakdown = breakdown
		return result, nil
	}

	// 图像与音频并发生成
	g, gctx := errgroup.WithContext(ctx)
	if req.Image != nil {
		g.Go(func() error {
			r := o.invoke(gctx, entity.GenerationKindImage, &req.Image.RequestBase,
				func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
					return p.GenerateImage(ctx, req.Image)
				})
			o.recordUsage(gctx, entity.GenerationKindImage, &req.Image.RequestBase, r)
			breakdown.ImageGeneration = r
			return nil
		})
	}
	if req.Audio != nil {
		g.Go(func() error {
			r := o.invoke(gctx, entity.GenerationKindAudio, &req.Audio.RequestBase,
				func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error) {
					return p.GenerateAudio(ctx, req.Audio)
				})
			o.recordUsage(gctx, entity.GenerationKindAudio, &req.Audio.RequestBase, r)
			breakdown.AudioGeneration = r
			return nil
		})
	}
	_ = g.Wait()

	result := &entity.GenerationResult{
		Success:        true,
		Provider:       textResult.Provider,
		Model:          textResult.Model,
		Content:        textResult.Content,
		Choices:        textResult.Choices,
		GenerationTime: time.Since(started),
		TokensUsed:     textResult.TokensUsed,
		Cost:           textResult.Cost,
		Breakdown:      breakdown,
	}
	if breakdown.ImageGeneration != nil && breakdown.ImageGeneration.Success {
		result.MediaURL = breakdown.ImageGeneration.MediaURL
		result.Cost += breakdown.ImageGeneration.Cost
		result.TokensUsed.Prompt += breakdown.ImageGeneration.TokensUsed.Prompt
		result.TokensUsed.Completion += breakdown.ImageGeneration.TokensUsed.Completion
	}
	if breakdown.AudioGeneration != nil && breakdown.AudioGeneration.Success {
		result.Cost += breakdown.AudioGeneration.Cost
		result.TokensUsed.Prompt += breakdown.AudioGeneration.TokensUsed.Prompt
		result.TokensUsed.Completion += breakdown.AudioGeneration.TokensUsed.Completion
	}
	return result, nil
}

// BestProvider 按评分选出最优提供商，无合格候选时返回空串
func (o *Orchestrator) BestProvider(criteria SelectionCriteria) string {
	return o.selector.BestProvider(criteria)
}

// CheckProviderStatus 探测提供商可用性。
// 探测失败写入不可用状态并返回该状态，不向调用方返回错误；
// 同一提供商的并发探测通过 singleflight 合并。
func (o *Orchestrator) CheckProviderStatus(ctx context.Context, provider string) (*entity.ProviderStatus, error) {
	ctx, span := tracer.Start(ctx, "orchestration.CheckProviderStatus",
		trace.WithAttributes(attribute.String("generation.provider", provider)))
	defer span.End()

	p, ok := o.registry.Get(provider)
	if !ok {
		return nil, errors.NotFound(errors.CodeNotFound, "provider not registered").
			WithDetail("provider", provider)
	}

	v, err, _ := o.probeGroup.Do(provider, func() (interface{}, error) {
		return o.probe(ctx, provider, p), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.ProviderStatus), nil
}

// probe 执行一次可用性探测并更新状态缓存与指标
func (o *Orchestrator) probe(ctx context.Context, name string, p AIProvider) *entity.ProviderStatus {
	probeCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	started := time.Now()
	status, err := p.CheckAvailability(probeCtx)
	elapsed := time.Since(started)

	if err != nil || status == nil {
		logger.Warn(ctx, "provider probe failed", "provider", name, "elapsed", elapsed.String())
		status = &entity.ProviderStatus{
			Provider:    name,
			IsAvailable: false,
			ErrorRate:   1.0,
		}
	}
	status.Provider = name
	status.CheckedAt = time.Now()
	if status.ResponseTime == 0 {
		status.ResponseTime = elapsed
	}

	o.refreshRateBudget(ctx, name, status)
	o.statuses.Set(status)

	available := 0.0
	checkStatus := "failure"
	if status.IsAvailable {
		available = 1.0
		checkStatus = "success"
	}
	metrics.ProviderAvailable.WithLabelValues(name).Set(available)
	metrics.ProviderResponseTime.WithLabelValues(name).Set(status.ResponseTime.Seconds())
	metrics.ProviderErrorRate.WithLabelValues(name).Set(status.ErrorRate)
	metrics.ProviderHealthChecks.WithLabelValues(name, checkStatus).Inc()

	return status
}

// refreshRateBudget 从滑动窗口配额刷新剩余额度
func (o *Orchestrator) refreshRateBudget(ctx context.Context, name string, status *entity.ProviderStatus) {
	if o.limiter == nil {
		return
	}
	cfg, ok := o.registry.Config(name)
	if !ok || cfg.RateLimit <= 0 {
		return
	}
	remaining, err := o.limiter.Remaining(ctx, providerRateLimitKey(name), cfg.RateLimit, time.Minute)
	if err != nil {
		logger.Warn(ctx, "failed to read provider rate budget", "provider", name)
		return
	}
	status.RateLimitRemaining = remaining
}

// TestProvider 用固定提示词试调提供商
func (o *Orchestrator) TestProvider(ctx context.Context, provider string) (*entity.GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.TestProvider",
		trace.WithAttributes(attribute.String("generation.provider", provider)))
	defer span.End()

	req := &entity.TextRequest{
		RequestBase: entity.RequestBase{
			Prompt:   "Reply with a single short sentence confirming you are operational.",
			Provider: provider,
		},
		Length: entity.TextLengthShort,
	}
	return o.GenerateText(ctx, req)
}

// ModerateContent 内容审核
func (o *Orchestrator) ModerateContent(ctx context.Context, provider, content string) (*entity.ModerationResult, error) {
	ctx, span := tracer.Start(ctx, "orchestration.ModerateContent")
	defer span.End()

	if content == "" {
		return nil, errors.Validation(errors.CodeInvalidParam, "content is required")
	}

	name, err := o.resolveProvider(provider)
	if err != nil {
		return nil, err
	}
	p, _ := o.registry.Get(name)

	modCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	result, err := p.ModerateContent(modCtx, content)
	if err != nil {
		metrics.ModerationTotal.WithLabelValues(name, "error").Inc()
		logger.Error(ctx, "moderation call failed", err, "provider", name)
		return nil, errors.ExternalService(errors.CodeProviderError, "moderation failed").
			WithDetail("provider", name)
	}

	verdict := "approved"
	if !result.Approved {
		verdict = "rejected"
	}
	metrics.ModerationTotal.WithLabelValues(name, verdict).Inc()
	return result, nil
}

// EstimateCost 估算一次调用成本（美元）
func (o *Orchestrator) EstimateCost(provider string, inputTokens, outputTokens int) float64 {
	return o.estimator.Estimate(provider, inputTokens, outputTokens)
}

// ValidateRequest 按请求种类执行校验
func (o *Orchestrator) ValidateRequest(kind entity.GenerationKind, req interface{}) error {
	switch kind {
	case entity.GenerationKindText, entity.GenerationKindChoices:
		r, ok := req.(*entity.TextRequest)
		if !ok {
			return errors.Validation(errors.CodeInvalidParam, "request type does not match kind")
		}
		return o.validator.ValidateText(r)
	case entity.GenerationKindImage:
		r, ok := req.(*entity.ImageRequest)
		if !ok {
			return errors.Validation(errors.CodeInvalidParam, "request type does not match kind")
		}
		return o.validator.ValidateImage(r)
	case entity.GenerationKindAudio:
		r, ok := req.(*entity.AudioRequest)
		if !ok {
			return errors.Validation(errors.CodeInvalidParam, "request type does not match kind")
		}
		return o.validator.ValidateAudio(r)
	case entity.GenerationKindCombined:
		r, ok := req.(*entity.CombinedRequest)
		if !ok {
			return errors.Validation(errors.CodeInvalidParam, "request type does not match kind")
		}
		return o.validator.ValidateCombined(r)
	}
	return errors.Validation(errors.CodeInvalidParam, "unknown generation kind").
		WithDetail("kind", string(kind))
}

// resolveProvider 解析提供商：显式指定优先，否则按评分选最优
func (o *Orchestrator) resolveProvider(explicit string) (string, error) {
	if explicit != "" {
		if !o.registry.IsEnabled(explicit) {
			return "", errors.BusinessRule(errors.CodeNoProviderAvailable, "provider not available").
				WithDetail("provider", explicit)
		}
		return explicit, nil
	}
	name := o.selector.BestProvider(SelectionCriteria{})
	if name == "" {
		return "", errors.BusinessRule(errors.CodeNoProviderAvailable, "no provider available")
	}
	return name, nil
}

// invoke 解析提供商并发起一次带超时的生成调用，
// 任何失败都归一化为 Success=false 的结果，不向上传播原始错误。
func (o *Orchestrator) invoke(
	ctx context.Context,
	kind entity.GenerationKind,
	base *entity.RequestBase,
	call func(ctx context.Context, p AIProvider) (*entity.GenerationResult, error),
) *entity.GenerationResult {
	started := time.Now()

	name, err := o.resolveProvider(base.Provider)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("none", string(kind), "failure").Inc()
		return entity.FailedResult("", errors.ToDomainError(err).Message, time.Since(started))
	}
	p, _ := o.registry.Get(name)

	if !o.allowProviderCall(ctx, name) {
		metrics.GenerationTotal.WithLabelValues(name, string(kind), "throttled").Inc()
		return entity.FailedResult(name, "provider rate limit exceeded", time.Since(started))
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	type callOutcome struct {
		result *entity.GenerationResult
		err    error
	}
	done := make(chan callOutcome, 1)
	go func() {
		r, callErr := call(callCtx, p)
		done <- callOutcome{result: r, err: callErr}
	}()

	var outcome callOutcome
	select {
	case outcome = <-done:
	case <-callCtx.Done():
		// 超时后放弃等待，迟到的结果被丢弃
		elapsed := time.Since(started)
		logger.Warn(ctx, "provider call timed out",
			"provider", name, "kind", string(kind), "elapsed", elapsed.String())
		metrics.GenerationTotal.WithLabelValues(name, string(kind), "timeout").Inc()
		return entity.FailedResult(name, "generation timed out", elapsed)
	}

	elapsed := time.Since(started)
	if outcome.err != nil || outcome.result == nil || !outcome.result.Success {
		errMsg := "generation failed"
		if outcome.result != nil && outcome.result.Error != "" {
			errMsg = outcome.result.Error
		}
		if outcome.err != nil {
			logger.Error(ctx, "provider call failed", outcome.err,
				"provider", name, "kind", string(kind))
		}
		metrics.GenerationTotal.WithLabelValues(name, string(kind), "failure").Inc()
		return entity.FailedResult(name, errMsg, elapsed)
	}

	result := outcome.result
	result.Provider = name
	result.GenerationTime = elapsed
	result.Error = ""
	if result.Model == "" {
		if cfg, ok := o.registry.Config(name); ok {
			result.Model = cfg.Model
		}
	}
	if result.Cost == 0 && result.TokensUsed.Total() > 0 {
		result.Cost = o.estimator.Estimate(name, result.TokensUsed.Prompt, result.TokensUsed.Completion)
	}

	metrics.GenerationTotal.WithLabelValues(name, string(kind), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(name, string(kind)).Observe(elapsed.Seconds())
	if result.TokensUsed.Prompt > 0 {
		metrics.GenerationTokensUsed.WithLabelValues(name, result.Model, "prompt").
			Add(float64(result.TokensUsed.Prompt))
	}
	if result.TokensUsed.Completion > 0 {
		metrics.GenerationTokensUsed.WithLabelValues(name, result.Model, "completion").
			Add(float64(result.TokensUsed.Completion))
	}
	if result.Cost > 0 {
		metrics.GenerationCostUSD.WithLabelValues(name, result.Model).Add(result.Cost)
	}

	logger.Info(ctx, "generation completed",
		"provider", name, "kind", string(kind),
		"tokens", result.TokensUsed.Total(), "elapsed", elapsed.String())
	return result
}

// allowProviderCall 按提供商每分钟配额放行调用，配额服务异常时放行
func (o *Orchestrator) allowProviderCall(ctx context.Context, name string) bool {
	if o.limiter == nil {
		return true
	}
	cfg, ok := o.registry.Config(name)
	if !ok || cfg.RateLimit <= 0 {
		return true
	}
	allowed, err := o.limiter.Allow(ctx, providerRateLimitKey(name), cfg.RateLimit, time.Minute)
	if err != nil {
		logger.Warn(ctx, "provider rate limit check failed", "provider", name)
		return true
	}
	return allowed
}

// recordUsage 记录用量事件，解析失败的用户标识直接跳过
func (o *Orchestrator) recordUsage(ctx context.Context, kind entity.GenerationKind, base *entity.RequestBase, result *entity.GenerationResult) {
	if o.usage == nil || result == nil || base.UserID == "" {
		return
	}
	if _, err := uuid.Parse(base.UserID); err != nil {
		return
	}

	o.usage.Record(ctx, service.GenerationUsageInput{
		UserID:           base.UserID,
		StoryID:          base.StoryID,
		Provider:         result.Provider,
		Model:            result.Model,
		Kind:             string(kind),
		Success:          result.Success,
		TokensPrompt:     result.TokensUsed.Prompt,
		TokensCompletion: result.TokensUsed.Completion,
		CostUSD:          result.Cost,
		Duration:         result.GenerationTime,
	})
}

func providerRateLimitKey(provider string) string {
	return fmt.Sprintf("ratelimit:provider:%s", provider)
}

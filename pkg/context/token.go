package context

import (
	"fmt"

	"github.com/easyops/promptfit/pkg/core/config"
	"github.com/easyops/promptfit/pkg/core/message"
	"github.com/pkoukk/tiktoken-go"
	"github.com/tiktoken-go/tokenizer"
)

const defaultCounterModel = "gpt-3.5-turbo"

// TokenCounter 计算文本的 Token 数
//
// 实现必须是确定性的：相同输入总是返回相同的非负整数。
type TokenCounter interface {
	Count(text string) int
	// CountMessages 计入每条消息的角色和格式开销，用于估算整个请求
	CountMessages(messages []message.Message) int
}

// TiktokenCounter 基于 pkoukk/tiktoken-go，首次使用某个编码时会下载词表
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter 按模型选择编码，未知模型使用 cl100k_base
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	if model == "" {
		model = defaultCounterModel
	}
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if encoding, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE); err != nil {
			return nil, fmt.Errorf("load tiktoken encoding for %s: %w", model, err)
		}
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

func (c *TiktokenCounter) CountMessages(messages []message.Message) int {
	return countMessages(c, messages)
}

// CodecCounter 基于 tiktoken-go/tokenizer，词表内嵌在二进制中，不需要网络
type CodecCounter struct {
	codec tokenizer.Codec
}

// NewCodecCounter 按模型选择编码，未知模型使用 cl100k_base
func NewCodecCounter(model string) (*CodecCounter, error) {
	if model == "" {
		model = defaultCounterModel
	}
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		if codec, err = tokenizer.Get(tokenizer.Cl100kBase); err != nil {
			return nil, fmt.Errorf("load tokenizer codec for %s: %w", model, err)
		}
	}
	return &CodecCounter{codec: codec}, nil
}

// Count 编码失败时退回字符估算，保证总有结果
func (c *CodecCounter) Count(text string) int {
	n, err := c.codec.Count(text)
	if err != nil {
		return estimatedCounter.Count(text)
	}
	return n
}

func (c *CodecCounter) CountMessages(messages []message.Message) int {
	return countMessages(c, messages)
}

// EstimatedCounter 按字符数估算，没有任何词表时使用
type EstimatedCounter struct {
	// CharsPerToken 默认 4，适合英文文本
	CharsPerToken float64
}

var estimatedCounter = NewEstimatedCounter()

func NewEstimatedCounter() *EstimatedCounter {
	return &EstimatedCounter{CharsPerToken: 4}
}

func (c *EstimatedCounter) Count(text string) int {
	perToken := c.CharsPerToken
	if perToken <= 0 {
		perToken = 4
	}
	return int(float64(len(text)) / perToken)
}

func (c *EstimatedCounter) CountMessages(messages []message.Message) int {
	return countMessages(c, messages)
}

// countMessages 按 OpenAI 的计数方式：每条消息 3 个格式 Token，回复引导再加 3 个
// https://cookbook.openai.com/examples/how_to_count_tokens_with_tiktoken
func countMessages(counter TokenCounter, messages []message.Message) int {
	const perMessage, replyPrimer = 3, 3

	total := replyPrimer
	for _, msg := range messages {
		total += perMessage + counter.Count(string(msg.Role)) + counter.Count(msg.Content)
	}
	return total
}

// DefaultTokenCounter 依次尝试 tiktoken 和 codec，都不可用时使用字符估算
func DefaultTokenCounter() TokenCounter {
	if counter, err := NewTiktokenCounter(defaultCounterModel); err == nil {
		return counter
	}
	if counter, err := NewCodecCounter(defaultCounterModel); err == nil {
		return counter
	}
	return NewEstimatedCounter()
}

// NewTokenCounter 按配置创建计数器
//
// tiktoken 初始化失败（例如无法下载词表）时退回 codec。
func NewTokenCounter(kind config.Tokenizer, model string) (TokenCounter, error) {
	switch kind {
	case config.TokenizerTiktoken, "":
		if counter, err := NewTiktokenCounter(model); err == nil {
			return counter, nil
		}
		return NewCodecCounter(model)
	case config.TokenizerCodec:
		return NewCodecCounter(model)
	case config.TokenizerEstimate:
		return NewEstimatedCounter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownTokenizer, kind)
	}
}

var (
	_ TokenCounter = (*TiktokenCounter)(nil)
	_ TokenCounter = (*CodecCounter)(nil)
	_ TokenCounter = (*EstimatedCounter)(nil)
)

package config

// Tokenizer 分词器类型
type Tokenizer string

const (
	// TokenizerTiktoken pkoukk/tiktoken-go（按模型选择编码，首次使用时下载词表）
	TokenizerTiktoken Tokenizer = "tiktoken"
	// TokenizerCodec tiktoken-go/tokenizer（内嵌词表，无需网络）
	TokenizerCodec Tokenizer = "codec"
	// TokenizerEstimate 按字符数估算
	TokenizerEstimate Tokenizer = "estimate"
)

// IsValid 检查分词器类型是否有效
func (t Tokenizer) IsValid() bool {
	switch t {
	case TokenizerTiktoken, TokenizerCodec, TokenizerEstimate:
		return true
	default:
		return false
	}
}

// PromptConfig Prompt 组装配置
type PromptConfig struct {
	// TokenLimit 整个请求的 Token 预算
	// 默认: 4000
	TokenLimit int `koanf:"token_limit"`
	// Tokenizer 分词器类型
	// 默认: tiktoken
	Tokenizer Tokenizer `koanf:"tokenizer"`
	// Model 用于选择编码的模型名，为空时沿用 llm.model
	Model string `koanf:"model"`
}

// Validate 验证 Prompt 配置
func (c *PromptConfig) Validate() error {
	if c.TokenLimit < 1 {
		return ErrInvalidTokenLimit
	}
	if !c.Tokenizer.IsValid() {
		return ErrUnknownTokenizer
	}
	return nil
}

// WithDefaults 返回带默认值的配置
func (c PromptConfig) WithDefaults() PromptConfig {
	if c.TokenLimit == 0 {
		c.TokenLimit = 4000
	}
	if c.Tokenizer == "" {
		c.Tokenizer = TokenizerTiktoken
	}
	return c
}

// CacheConfig 摘要缓存配置
type CacheConfig struct {
	// Enabled 是否缓存压缩结果
	Enabled bool `koanf:"enabled"`
	// Path SQLite 数据库路径，":memory:" 表示进程内
	Path string `koanf:"path"`
}

// Validate 验证缓存配置
func (c *CacheConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return ErrCachePathRequired
	}
	return nil
}

package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分类与传播策略：
//   - INSUFFICIENT_DATA：可恢复，触发冷启动/降级路径，不对外暴露为硬失败
//   - UNAVAILABLE：存储不可用，原样向调用方传播（重试策略归调用方）
//   - TIMEOUT：计算超时，向调用方传播，提示稍后重试或读旧缓存
//   - INVALID_INPUT：未知的用户/拍品标识，立即返回，不重试
type DomainError struct {
	Code    string // 错误代码（如 "INSUFFICIENT_DATA", "TIMEOUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeUnavailable      = "UNAVAILABLE"        // 存储/服务不可用
	ErrorCodeTimeout          = "TIMEOUT"            // 计算超时
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效（未知用户/拍品）
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"  // 数据不足（可恢复，走兜底路径）
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征模块
	ModuleEngine  = "engine"  // 引擎模块
	ModulePrice   = "price"   // 价格估计模块
	ModuleCache   = "cache"   // 结果缓存模块
)

// 预定义错误

var (
	// ErrInsufficientData 表示用户没有任何交互历史。
	// 这是一个"信号"而非硬错误：Ranker 捕获后转入冷启动路径。
	ErrInsufficientData = NewDomainError(ModuleFeature, ErrorCodeInsufficientData, "feature: user has no interactions")

	// ErrComputationTimeout 表示一次推荐/估价计算超过了配置的时间预算。
	ErrComputationTimeout = NewDomainError(ModuleEngine, ErrorCodeTimeout, "engine: computation timed out")
)

// 通用错误检查函数

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool {
	return hasCode(err, ErrorCodeInsufficientData)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsTimeout 检查错误是否为 TIMEOUT
func IsTimeout(err error) bool {
	return hasCode(err, ErrorCodeTimeout)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

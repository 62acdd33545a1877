package models

import (
	"errors"
	"fmt"
)

// 错误分类，配合 errors.Is 使用
var (
	ErrTransport   = errors.New("transport error")
	ErrProvider    = errors.New("provider error")
	ErrModel       = errors.New("model error")
	ErrExtraction  = errors.New("extraction error")
	ErrPersistence = errors.New("persistence error")
)

// Error 带分类的错误，Op 说明出错的位置（例如 "naver" / "scrape"）
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap 用指定分类包装错误；err 为 nil 时仍返回一个只有分类的错误
func Wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 返回错误分类的短名称，用于日志与指标标签
func KindOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrModel):
		return "model"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}

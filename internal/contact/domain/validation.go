package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinMessageLength 去除空白后消息的最小字符数
const MinMessageLength = 10

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// 面向用户的校验提示
const (
	MsgNameRequired   = "Bitte geben Sie Ihren Namen ein."
	MsgEmailRequired  = "Bitte geben Sie Ihre E-Mail-Adresse ein."
	MsgEmailInvalid   = "Bitte geben Sie eine gültige E-Mail-Adresse ein."
	MsgCompanyMissing = "Bitte geben Sie Ihr Unternehmen an."
	MsgMessageShort   = "Die Nachricht muss mindestens 10 Zeichen enthalten."
)

// ValidationError 第一条未通过的校验规则
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Rule 一条校验规则，按顺序执行
type Rule struct {
	Field   string
	Message string
	Check   func(name, email, company, message string) bool
}

// Rules 校验规则，顺序即优先级
var Rules = []Rule{
	{Field: "name", Message: MsgNameRequired, Check: func(name, _, _, _ string) bool {
		return strings.TrimSpace(name) != ""
	}},
	{Field: "email", Message: MsgEmailRequired, Check: func(_, email, _, _ string) bool {
		return strings.TrimSpace(email) != ""
	}},
	{Field: "email", Message: MsgEmailInvalid, Check: func(_, email, _, _ string) bool {
		return IsValidEmail(email)
	}},
	{Field: "company", Message: MsgCompanyMissing, Check: func(_, _, company, _ string) bool {
		return strings.TrimSpace(company) != ""
	}},
	{Field: "message", Message: MsgMessageShort, Check: func(_, _, _, message string) bool {
		return utf8.RuneCountInString(strings.TrimSpace(message)) >= MinMessageLength
	}},
}

// IsValidEmail 检查邮箱格式 local@domain.tld
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate 返回第一条未通过规则的 *ValidationError，全部通过返回 nil
func Validate(name, email, company, message string) error {
	for _, r := range Rules {
		if !r.Check(name, email, company, message) {
			return &ValidationError{Field: r.Field, Message: r.Message}
		}
	}
	return nil
}

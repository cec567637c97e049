package hats

import (
	"fmt"
	"strings"
)

// Role 思考帽角色
type Role string

const (
	Blue   Role = "blue"
	White  Role = "white"
	Red    Role = "red"
	Yellow Role = "yellow"
	Black  Role = "black"
	Green  Role = "green"
)

// roles 固定的展示顺序
var roles = []Role{Blue, White, Red, Yellow, Black, Green}

// Roles 按固定顺序返回全部六个角色
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole 解析角色标识，大小写与首尾空白不敏感
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unknown hat %q", s)
}

// Valid 是否为六个已知角色之一
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// Label 角色展示名，如 "Blue"
func (r Role) Label() string {
	if !r.Valid() {
		return string(r)
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r Role) String() string { return string(r) }

// AnswerLength 回答详略程度
type AnswerLength string

const (
	Short AnswerLength = "short"
	Long  AnswerLength = "long"
)

// ParseAnswerLength 解析 answer_length，空值默认为 long
func ParseAnswerLength(s string) (AnswerLength, error) {
	switch AnswerLength(strings.ToLower(strings.TrimSpace(s))) {
	case "", Long:
		return Long, nil
	case Short:
		return Short, nil
	}
	return "", Validationf("answer_length must be 'short' or 'long'.")
}

// AnswerLengthOrDefault 解析失败时退回 long，用于报告导出
func AnswerLengthOrDefault(s string) AnswerLength {
	l, err := ParseAnswerLength(s)
	if err != nil {
		return Long
	}
	return l
}

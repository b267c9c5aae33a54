// Package checklist holds the fixed, ordered list of release steps and the
// status derived from per-step completion flags.
package checklist

import (
	"errors"
	"strings"
)

// ErrEmptyChecklist 检查项列表为空
var ErrEmptyChecklist = errors.New("checklist must contain at least one step")

// Checklist 有序、只读的检查项名称列表，启动时构建一次后注入各层
type Checklist struct {
	steps []string
}

// Step 检查项
type Step struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// New 根据名称列表创建检查项，名称会去除首尾空白
func New(names []string) (*Checklist, error) {
	if len(names) == 0 {
		return nil, ErrEmptyChecklist
	}
	steps := make([]string, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("checklist step name must not be empty")
		}
		steps[i] = name
	}
	return &Checklist{steps: steps}, nil
}

// Len 检查项数量
func (c *Checklist) Len() int {
	return len(c.steps)
}

// Name 返回下标对应的检查项名称
func (c *Checklist) Name(index int) string {
	return c.steps[index]
}

// Names 返回检查项名称副本
func (c *Checklist) Names() []string {
	return append([]string(nil), c.steps...)
}

// Steps 返回带下标的检查项列表
func (c *Checklist) Steps() []Step {
	steps := make([]Step, len(c.steps))
	for i, name := range c.steps {
		steps[i] = Step{Index: i, Name: name}
	}
	return steps
}

// InRange 下标是否在 [0, Len()) 范围内
func (c *Checklist) InRange(index int) bool {
	return index >= 0 && index < len(c.steps)
}

// Blank 返回长度为 Len() 且全部未完成的标记列表
func (c *Checklist) Blank() []bool {
	return make([]bool, len(c.steps))
}

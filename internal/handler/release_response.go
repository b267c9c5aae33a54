package handler

import (
	"time"

	"github.com/bingooyong/release-tracker/internal/checklist"
	"github.com/bingooyong/release-tracker/internal/model"
)

// StepResponse 单个检查项及其完成状态
type StepResponse struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// ReleaseResponse 对外返回的发布结构
type ReleaseResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Date           time.Time        `json:"date"`
	AdditionalInfo *string          `json:"additional_info"`
	StepsCompleted []bool           `json:"steps_completed"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Status         checklist.Status `json:"status"`
	Steps          []StepResponse   `json:"steps"`
}

// toReleaseResponse 将发布记录转换为响应结构，不修改输入
//
// 持久化的标记列表无效时按空列表处理；steps 长度恒等于检查项数量，
// 超出标记列表长度的检查项视为未完成。
func toReleaseResponse(list *checklist.Checklist, release *model.Release) ReleaseResponse {
	completed := make([]bool, len(release.StepsCompleted))
	copy(completed, release.StepsCompleted)

	steps := make([]StepResponse, list.Len())
	for i := range steps {
		steps[i] = StepResponse{
			Name:      list.Name(i),
			Completed: i < len(completed) && completed[i],
		}
	}

	var additionalInfo *string
	if release.AdditionalInfo != nil {
		info := *release.AdditionalInfo
		additionalInfo = &info
	}

	return ReleaseResponse{
		ID:             release.ID,
		Name:           release.Name,
		Date:           release.Date.UTC(),
		AdditionalInfo: additionalInfo,
		StepsCompleted: completed,
		CreatedAt:      release.CreatedAt.UTC(),
		UpdatedAt:      release.UpdatedAt.UTC(),
		Status:         checklist.DeriveStatus(completed),
		Steps:          steps,
	}
}

// toReleaseResponses 批量转换
func toReleaseResponses(list *checklist.Checklist, releases []*model.Release) []ReleaseResponse {
	out := make([]ReleaseResponse, 0, len(releases))
	for _, release := range releases {
		out = append(out, toReleaseResponse(list, release))
	}
	return out
}

package checklist

// Status 发布状态
type Status string

const (
	StatusPlanned Status = "planned"
	StatusOngoing Status = "ongoing"
	StatusDone    Status = "done"
)

// DeriveStatus 根据检查项完成情况计算发布状态
//
// nil 或空列表、没有任何完成项 -> planned；全部完成 -> done；其余 -> ongoing。
func DeriveStatus(completed []bool) Status {
	if len(completed) == 0 {
		return StatusPlanned
	}

	done := 0
	for _, c := range completed {
		if c {
			done++
		}
	}

	switch done {
	case 0:
		return StatusPlanned
	case len(completed):
		return StatusDone
	default:
		return StatusOngoing
	}
}

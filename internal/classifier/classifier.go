package classifier

import (
	"sort"
	"time"

	"shakti-alerts/internal/models"
)

// DefaultApproachingWindow 默认临近窗口
const DefaultApproachingWindow = 30 * time.Minute

// Classify 对单条承诺评定紧急度
// 规则：
//  1. 已查看 → GREEN（当日已打开过该案件，无论逾期多久都不再升级）
//  2. due <= now → RED（已到期或已逾期）
//  3. due <= now + window → YELLOW（临近，窗口边界取闭区间）
//  4. 其它 → GREEN（今日稍后，仅作日程提示）
func Classify(due time.Time, isViewed bool, now time.Time, window time.Duration) models.AlertStatus {
	if isViewed {
		return models.StatusGreen
	}
	if !due.After(now) {
		return models.StatusRed
	}
	if !due.After(now.Add(window)) {
		return models.StatusYellow
	}
	return models.StatusGreen
}

// Overall 推导整体状态：任一 RED → RED；否则任一 YELLOW → YELLOW；否则 GREEN
// 空列表为 GREEN
func Overall(alerts []models.Alert) models.AlertStatus {
	status := models.StatusGreen
	for _, a := range alerts {
		if a.Status == models.StatusRed {
			return models.StatusRed
		}
		if a.Status == models.StatusYellow {
			status = models.StatusYellow
		}
	}
	return status
}

// SortAlerts 排序：RED 在 YELLOW 前、YELLOW 在 GREEN 前；同级按到期时间升序（最早在前）
func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Status.Rank() != alerts[j].Status.Rank() {
			return alerts[i].Status.Rank() < alerts[j].Status.Rank()
		}
		return alerts[i].DueDate.Before(alerts[j].DueDate)
	})
}

// GroupBuckets 按状态分为三个分组，组内保持传入顺序
func GroupBuckets(alerts []models.Alert) models.AlertBuckets {
	buckets := models.AlertBuckets{
		Overdue:     []models.Alert{},
		Approaching: []models.Alert{},
		Scheduled:   []models.Alert{},
	}
	for _, a := range alerts {
		switch a.Status {
		case models.StatusRed:
			buckets.Overdue = append(buckets.Overdue, a)
		case models.StatusYellow:
			buckets.Approaching = append(buckets.Approaching, a)
		default:
			buckets.Scheduled = append(buckets.Scheduled, a)
		}
	}
	return buckets
}

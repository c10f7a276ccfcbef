package models

import (
	"time"
)

// CommitmentType 承诺类型
type CommitmentType string

const (
	// CommitmentPTP 客户承诺还款（Promise to Pay）
	CommitmentPTP CommitmentType = "PTP"
	// CommitmentCallback 话务员承诺回拨
	CommitmentCallback CommitmentType = "CALLBACK"
)

// AlertStatus 提醒紧急度
type AlertStatus string

const (
	// StatusRed 已到期或已逾期
	StatusRed AlertStatus = "RED"
	// StatusYellow 临近到期（30分钟窗口内）
	StatusYellow AlertStatus = "YELLOW"
	// StatusGreen 今日稍后 / 已查看
	StatusGreen AlertStatus = "GREEN"
)

// Rank 紧急度排序权重（RED 最前）
func (s AlertStatus) Rank() int {
	switch s {
	case StatusRed:
		return 0
	case StatusYellow:
		return 1
	default:
		return 2
	}
}

// CallLogRecord 通话记录原始行（与 customer_cases JOIN 后）
// 作为 original_data 透传给消费方，字段保持与表结构一致
type CallLogRecord struct {
	LogID             string     `json:"log_id"`
	CaseID            string     `json:"case_id"`
	EmployeeID        string     `json:"employee_id"`
	CallStatus        string     `json:"call_status"`
	PTPDate           *time.Time `json:"ptp_date,omitempty"`
	CallbackDate      *time.Time `json:"callback_date,omitempty"`
	CallbackCompleted bool       `json:"callback_completed"`
	Notes             *string    `json:"notes,omitempty"`
	CustomerName      string     `json:"customer_name"`
	LoanID            string     `json:"loan_id"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Commitment 统一承诺抽象（由通话记录投影得到，不单独落库）
// 每条承诺只有一个类型和一个到期时间；缺失到期时间的行在扫描阶段即被丢弃
type Commitment struct {
	LogID        string         `json:"id"`
	CaseID       string         `json:"case_id"`
	EmployeeID   string         `json:"employee_id"`
	CustomerName string         `json:"customer_name"`
	LoanID       string         `json:"loan_id"`
	Type         CommitmentType `json:"type"`
	DueDate      time.Time      `json:"due_date"`
	Original     CallLogRecord  `json:"original_data"`
}

// Alert 承诺 + 计算字段
type Alert struct {
	Commitment
	Status   AlertStatus `json:"status"`
	IsViewed bool        `json:"is_viewed"`
}

// AlertSummary 单用户范围的聚合结果
type AlertSummary struct {
	Status AlertStatus `json:"status"`
	Cases  []Alert     `json:"cases"`
}

// AlertBuckets 详情列表的三个分组（保持聚合器排序）
type AlertBuckets struct {
	Overdue     []Alert `json:"overdue"`      // RED：已到期/已逾期
	Approaching []Alert `json:"approaching"`  // YELLOW：临近到期
	Scheduled   []Alert `json:"scheduled"`    // GREEN：今日日程
}

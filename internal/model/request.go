package model

import "time"

// RequestStatusPending 新建请求的唯一初始状态，后续状态由调用方自行更新
const RequestStatusPending = "pending"

// Request 学伴请求（sender -> partner）
type Request struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SenderEmail string `json:"senderEmail" gorm:"type:varchar(255);not null;index:idx_request_sender_created,priority:1;uniqueIndex:ux_request_pair,priority:1"`
	SenderName  string `json:"senderName" gorm:"type:varchar(255)"`
	// 复合唯一键，避免重复请求
	// ux_request_pair = (sender_email, partner_id)
	PartnerID string    `json:"partnerId" gorm:"type:varchar(36);not null;index:idx_request_partner;uniqueIndex:ux_request_pair,priority:2"`
	Message   string    `json:"message" gorm:"type:text;not null;default:''"`
	Status    string    `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_request_sender_created,priority:2"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return "requests" }

// RequestWithPartner 列表返回项，partnerDetails 为空表示学伴已不存在
type RequestWithPartner struct {
	Request
	PartnerDetails *Partner `json:"partnerDetails"`
}

// RequestPatch 可更新字段，nil 表示不修改
type RequestPatch struct {
	Message *string `json:"message"`
	Status  *string `json:"status"`
}

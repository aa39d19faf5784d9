package model

import (
	"strings"
	"time"
)

// 经验等级，排序时使用 ExperienceRank
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelExpert       = "Expert"
)

// Partner 学伴档案
type Partner struct {
	ID               string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string  `json:"name" gorm:"type:varchar(255)"`
	ProfileImage     string  `json:"profileImage" gorm:"type:text"`
	Subject          string  `json:"subject" gorm:"type:varchar(255);index"`
	StudyMode        string  `json:"studyMode" gorm:"type:varchar(32)"`
	AvailabilityTime string  `json:"availabilityTime" gorm:"type:varchar(255)"`
	Location         string  `json:"location" gorm:"type:varchar(255)"`
	ExperienceLevel  string  `json:"experienceLevel" gorm:"type:varchar(32)"`
	ExperienceRank   int     `json:"-" gorm:"not null;default:0;index"`
	Email            string  `json:"email" gorm:"type:varchar(255)"`
	Rating           float64 `json:"rating" gorm:"not null;default:0;index:idx_partner_rank,priority:1"`
	// PartnerCount 引用该学伴的请求数，只能通过计数操作修改
	PartnerCount int       `json:"partnerCount" gorm:"not null;default:0;index:idx_partner_rank,priority:2"`
	CreatedBy    string    `json:"createdBy" gorm:"type:varchar(255);index;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Partner) TableName() string { return "partners" }

// ExperienceRank 将经验等级映射为可排序的序数，未知等级为 0
func ExperienceRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "beginner":
		return 1
	case "intermediate":
		return 2
	case "expert":
		return 3
	default:
		return 0
	}
}

// PartnerPatch 档案可更新字段；计数、归属与创建时间不可修改
type PartnerPatch struct {
	Name             *string  `json:"name"`
	ProfileImage     *string  `json:"profileImage"`
	Subject          *string  `json:"subject"`
	StudyMode        *string  `json:"studyMode"`
	AvailabilityTime *string  `json:"availabilityTime"`
	Location         *string  `json:"location"`
	ExperienceLevel  *string  `json:"experienceLevel"`
	Email            *string  `json:"email"`
	Rating           *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

// Columns 转换为 gorm Updates 使用的列映射
func (p PartnerPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("name", p.Name)
	set("profile_image", p.ProfileImage)
	set("subject", p.Subject)
	set("study_mode", p.StudyMode)
	set("availability_time", p.AvailabilityTime)
	set("location", p.Location)
	set("email", p.Email)
	if p.ExperienceLevel != nil {
		cols["experience_level"] = *p.ExperienceLevel
		cols["experience_rank"] = ExperienceRank(*p.ExperienceLevel)
	}
	if p.Rating != nil {
		cols["rating"] = *p.Rating
	}
	return cols
}

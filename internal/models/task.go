package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type FiberType string

const (
	FiberF06   FiberType = "F.06"
	FiberF08   FiberType = "F.08"
	FiberF12   FiberType = "F.12"
	FiberOther FiberType = "Outro"
)

var (
	ErrMissingContractor   = errors.New("contractor is required")
	ErrMissingNeighborhood = errors.New("neighborhood is required")
	ErrNoActivity          = errors.New("at least one activity or quantity must be informed")
	ErrInvalidFiberType    = errors.New("invalid fiber type")
	ErrNegativeQuantity    = errors.New("quantities cannot be negative")
)

// ParseFiberType validates an optional fiber type.
func ParseFiberType(raw string) (FiberType, error) {
	switch ft := FiberType(strings.TrimSpace(raw)); ft {
	case "", FiberF06, FiberF08, FiberF12, FiberOther:
		return ft, nil
	default:
		return "", ErrInvalidFiberType
	}
}

// Task is a self-logged field activity. CompanyID and UserID never change after creation.
type Task struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	CompanyID    uint64 `gorm:"not null;index" json:"company_id"`
	UserID       uint64 `gorm:"not null;index" json:"user_id"`
	Contractor   string `gorm:"column:empresa;type:varchar(100);not null" json:"contractor"`
	Neighborhood string `gorm:"column:bairro;type:varchar(100);not null" json:"neighborhood"`

	SpliceBoxOpened bool `gorm:"not null" json:"splice_box_opened"`
	SpliceBoxClosed bool `gorm:"not null" json:"splice_box_closed"`
	CTOOpened       bool `gorm:"column:cto_opened;not null" json:"cto_opened"`
	CTOClosed       bool `gorm:"column:cto_closed;not null" json:"cto_closed"`
	RosetteOpened   bool `gorm:"not null" json:"rosette_opened"`
	RosetteClosed   bool `gorm:"not null" json:"rosette_closed"`

	CTOCount       int             `gorm:"column:cto_count;not null" json:"cto_count"`
	SpliceBoxCount int             `gorm:"not null" json:"splice_box_count"`
	FiberType      FiberType       `gorm:"type:varchar(20)" json:"fiber_type,omitempty"`
	FiberLaid      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fiber_laid_meters"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`

	// Relations
	Company Company     `gorm:"foreignKey:CompanyID" json:"-"`
	User    User        `gorm:"foreignKey:UserID" json:"-"`
	Photos  []TaskPhoto `gorm:"foreignKey:TaskID" json:"-"`
}

// TaskFields carries the technician-entered part of a task.
type TaskFields struct {
	Contractor      string
	Neighborhood    string
	SpliceBoxOpened bool
	SpliceBoxClosed bool
	CTOOpened       bool
	CTOClosed       bool
	RosetteOpened   bool
	RosetteClosed   bool
	CTOCount        int
	SpliceBoxCount  int
	FiberType       string
	FiberLaid       decimal.Decimal
	Notes           string
}

// HasActivity reports whether any activity flag or quantity is set.
func (f TaskFields) HasActivity() bool {
	return f.SpliceBoxOpened || f.SpliceBoxClosed ||
		f.CTOOpened || f.CTOClosed ||
		f.RosetteOpened || f.RosetteClosed ||
		f.CTOCount > 0 || f.SpliceBoxCount > 0 ||
		f.FiberLaid.IsPositive()
}

// NewTask builds a task owned by creator inside its own company.
func NewTask(creator *User, f TaskFields) (*Task, error) {
	if creator == nil || creator.CompanyID == 0 {
		return nil, ErrMissingTenant
	}
	contractor := strings.TrimSpace(f.Contractor)
	if contractor == "" {
		return nil, ErrMissingContractor
	}
	neighborhood := strings.TrimSpace(f.Neighborhood)
	if neighborhood == "" {
		return nil, ErrMissingNeighborhood
	}
	if f.CTOCount < 0 || f.SpliceBoxCount < 0 || f.FiberLaid.IsNegative() {
		return nil, ErrNegativeQuantity
	}
	if !f.HasActivity() {
		return nil, ErrNoActivity
	}
	fiberType, err := ParseFiberType(f.FiberType)
	if err != nil {
		return nil, err
	}

	return &Task{
		CompanyID:       creator.CompanyID,
		UserID:          creator.ID,
		Contractor:      contractor,
		Neighborhood:    neighborhood,
		SpliceBoxOpened: f.SpliceBoxOpened,
		SpliceBoxClosed: f.SpliceBoxClosed,
		CTOOpened:       f.CTOOpened,
		CTOClosed:       f.CTOClosed,
		RosetteOpened:   f.RosetteOpened,
		RosetteClosed:   f.RosetteClosed,
		CTOCount:        f.CTOCount,
		SpliceBoxCount:  f.SpliceBoxCount,
		FiberType:       fiberType,
		FiberLaid:       f.FiberLaid.Round(2),
		Notes:           strings.TrimSpace(f.Notes),
	}, nil
}

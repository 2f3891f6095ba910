package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Completion is the per-item completion state shared by every materialized
// item table. DoneAt and DoneByID are only ever non-nil while IsDone is true.
type Completion struct {
	IsDone    bool           `gorm:"not null;default:false" json:"is_done"`
	DoneAt    *time.Time     `json:"done_at"`
	DoneByID  *uuid.UUID     `gorm:"type:uuid" json:"done_by_id"`
	Note      string         `json:"note"`
	PhotoRefs datatypes.JSON `json:"photo_refs"`
}

// Photos decodes the stored photo reference list. A NULL or empty column
// yields an empty slice.
func (c Completion) Photos() []string {
	refs := []string{}
	if len(c.PhotoRefs) == 0 {
		return refs
	}
	if err := json.Unmarshal(c.PhotoRefs, &refs); err != nil || refs == nil {
		return []string{}
	}
	return refs
}

// WithPhoto returns the encoded list with ref appended after every existing
// reference.
func (c Completion) WithPhoto(ref string) (datatypes.JSON, error) {
	refs := append(c.Photos(), ref)
	b, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("encode photo refs: %w", err)
	}
	return datatypes.JSON(b), nil
}

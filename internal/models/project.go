package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	StatusUnderReview ProjectStatus = "under review"
	StatusApproved    ProjectStatus = "approved"
	StatusRejected    ProjectStatus = "rejected"
)

// ProjectFile is one attached file: the stored filename and the public URL
// it is served from.
type ProjectFile struct {
	Filename string `json:"filename"`
	FileURL  string `json:"fileUrl"`
}

type Project struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"userId" gorm:"not null;index"`
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	Name        string `json:"name" gorm:"not null;size:100"`
	Description string `json:"description" gorm:"not null"`
	Department  string `json:"department" gorm:"not null;size:255;index"`

	Files datatypes.JSON `json:"files" gorm:"type:jsonb"`

	Status       ProjectStatus `json:"status" gorm:"not null;default:'under review';size:20;index"`
	AdminMessage *string       `json:"adminMessage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// SetFiles marshals the attachment list into the JSONB column.
func (p *Project) SetFiles(files []ProjectFile) error {
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to marshal project files: %w", err)
	}
	p.Files = datatypes.JSON(data)
	return nil
}

// FileList unmarshals the attachment list from the JSONB column.
func (p *Project) FileList() ([]ProjectFile, error) {
	if len(p.Files) == 0 {
		return nil, nil
	}
	var files []ProjectFile
	if err := json.Unmarshal(p.Files, &files); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project files: %w", err)
	}
	return files, nil
}

// FindFile returns the attachment with the given stored filename.
func (p *Project) FindFile(filename string) (*ProjectFile, error) {
	files, err := p.FileList()
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].Filename == filename {
			return &files[i], nil
		}
	}
	return nil, nil
}

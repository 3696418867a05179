package handler

import (
	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/service"
)

// SectionHandler serves the section view routes.
type SectionHandler = ViewHandler[*service.SectionManager, dto.SectionForm, dto.SectionView]

// NewSectionHandler constructs a section handler.
func NewSectionHandler(views viewRegistry[*service.SectionManager], exports exportRenderer) *SectionHandler {
	return NewViewHandler[*service.SectionManager, dto.SectionForm, dto.SectionView](views, exports)
}

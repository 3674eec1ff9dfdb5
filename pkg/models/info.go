package models

// StageInfo describes one stage of a pipeline.
type StageInfo struct {
	Name         string   `json:"name"         validate:"required"`
	DisplayName  string   `json:"display_name" validate:"required"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// PipelineInfo is the metadata view of a registered pipeline.
type PipelineInfo struct {
	Name        string              `json:"name"         validate:"required"`
	DisplayName string              `json:"display_name" validate:"required"`
	Stages      []string            `json:"stages"`
	Phases      map[string][]string `json:"phases,omitempty"`
}

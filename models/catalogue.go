package models

type ModelOption struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Provider    Provider `json:"provider" yaml:"provider"`
	ModelID     string   `json:"modelId" yaml:"modelId"`
	Description string   `json:"description" yaml:"description"`
}

type ModelsGetResponse struct {
	Models []ModelOption `json:"models"`
}

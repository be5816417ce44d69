package dto

type CreateKpiCategoryRequest struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

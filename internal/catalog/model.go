// File: internal/catalog/model.go
package catalog

// Make is a vehicle manufacturer from the reference catalog.
type Make struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Model is a vehicle model of one make.
type Model struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// vPIC wire shapes.

type vpicResponse[T any] struct {
	Count   int `json:"Count"`
	Results []T `json:"Results"`
}

type vpicMake struct {
	MakeID   int    `json:"MakeId"`
	MakeName string `json:"MakeName"`
}

type vpicModel struct {
	ModelID   int    `json:"Model_ID"`
	ModelName string `json:"Model_Name"`
}

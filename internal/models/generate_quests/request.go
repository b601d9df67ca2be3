package models

type GenerateQuestsRequest struct {
	Feeling string `json:"feeling"`
}

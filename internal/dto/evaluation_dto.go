package dto

import "github.com/google/uuid"

type GenerateEvaluationRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Year   int       `json:"year"`
	Month  int       `json:"month"`
}

type SupervisorScoreRequest struct {
	ActorID  *uuid.UUID       `json:"actor_id"`
	Scores   map[uint]float64 `json:"scores"`
	Comments string           `json:"comments"`
}

type ApproveEvaluationRequest struct {
	ActorID  *uuid.UUID `json:"actor_id"`
	Comments string     `json:"comments"`
}

type PublishEvaluationRequest struct {
	ActorID *uuid.UUID `json:"actor_id"`
}

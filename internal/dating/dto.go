// internal/dating/dto.go
package dating

// DTOs for API requests/responses

type SwipeRequestDTO struct {
	TargetID  string `json:"target_id" validate:"required,uuid"`
	Direction string `json:"direction" validate:"required,oneof=like pass"`
}

type ReportRequestDTO struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type MatchResponseDTO struct {
	ID         string  `json:"id"`
	PartnerID  string  `json:"partner_id"`
	State      State   `json:"state"`
	Score      *int    `json:"score,omitempty"`
	CanMessage bool    `json:"can_message"`
	MatchedAt  string  `json:"matched_at"`
	EndedAt    *string `json:"ended_at,omitempty"`
	EndedByMe  bool    `json:"ended_by_me"`
}

// NewMatchResponse shapes a match from one participant's point of view
func NewMatchResponse(match *Match, viewerID string) *MatchResponseDTO {
	dto := &MatchResponseDTO{
		ID:         match.ID,
		PartnerID:  match.OtherUser(viewerID),
		State:      match.State,
		Score:      match.Score,
		CanMessage: CanMessage(match.State),
		MatchedAt:  match.MatchedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if match.EndedAt != nil {
		s := match.EndedAt.Format("2006-01-02T15:04:05Z07:00")
		dto.EndedAt = &s
	}
	if match.EndedBy != nil && *match.EndedBy == viewerID {
		dto.EndedByMe = true
	}
	return dto
}

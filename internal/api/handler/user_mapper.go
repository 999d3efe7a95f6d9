package handler

import (
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createUserRequest, idempotencyKey string) ports.CreateUserInput {
	id := req.UnderscoreID
	if id == "" {
		id = req.ID
	}
	return ports.CreateUserInput{
		ID:             id,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           req.Role,
		Password:       req.Password,
		IdempotencyKey: idempotencyKey,
	}
}

func toUserUpdate(req updateUserRequest) domain.UserUpdate {
	upd := domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		LastLogin: req.LastLogin,
	}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		upd.Role = &r
	}
	return upd
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	active := u.IsActive
	if active == "" {
		active = domain.ActiveString(false)
	}
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  active,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

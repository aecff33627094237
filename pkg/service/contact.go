package service

import (
	"context"
	"fmt"
	"strings"
)

type ContactMessage struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Message string `form:"message" validate:"required"`
}

func (s *AdminService) SendContact(ctx context.Context, msg ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Message = strings.TrimSpace(msg.Message)
	if err := s.check(msg); err != nil {
		return err
	}
	text := fmt.Sprintf("New message from %s <%s>:\n%s", msg.Name, msg.Email, msg.Message)
	if err := s.notifier.Notify(ctx, text, msg.Email); err != nil {
		return fmt.Errorf("err notifying about contact message: %w", err)
	}
	return nil
}

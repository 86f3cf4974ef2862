package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/orders"
)

// Router turns order and user events into notification deliveries.
type Router struct {
	Svc         *Service
	AdminUserID int64

	// Seen reports whether an event id was already processed. Consumer
	// groups redeliver after rebalances; skipping seen ids keeps the
	// fan-out idempotent across restarts.
	Seen func(ctx context.Context, eventID string) (bool, error)
}

func (r *Router) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("[notify] bad envelope topic=%s offset=%d: %v", m.Topic, m.Offset, err)
		return nil
	}
	if r.Seen != nil {
		seen, err := r.Seen(ctx, env.EventID)
		if err != nil {
			return fmt.Errorf("event dedup %s: %w", env.EventID, err)
		}
		if seen {
			return nil
		}
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		return route(ctx, r, env, r.orderCreated)
	case orders.EventOrdersCreatedFromCart:
		return route(ctx, r, env, r.ordersFromCart)
	case orders.EventOrderStatusUpdated:
		return route(ctx, r, env, r.orderStatusUpdated)
	case orders.EventUserRegistered:
		return route(ctx, r, env, r.userRegistered)
	case orders.EventUserStatusChanged:
		return route(ctx, r, env, r.userStatusChanged)
	case orders.EventLoginRequested:
		return route(ctx, r, env, r.loginRequested)
	case orders.EventLoginRequestDecided:
		return route(ctx, r, env, r.loginDecided)
	default:
		log.Printf("[notify] skip event type=%s id=%s", env.EventType, env.EventID)
		return nil
	}
}

func route[T any](ctx context.Context, r *Router, env orders.Envelope, fn func(context.Context, T) error) error {
	p, err := kafka.UnwrapPayload[T](env.Payload)
	if err != nil {
		log.Printf("[notify] bad payload type=%s id=%s: %v", env.EventType, env.EventID, err)
		return nil
	}
	return fn(ctx, p)
}

func (r *Router) deliver(ctx context.Context, in Input) error {
	res, err := r.Svc.Deliver(ctx, in)
	if err != nil {
		return err
	}
	if res.RequiresAppAction {
		log.Printf("[notify] no device token user=%d type=%s", in.UserID, in.Type)
	}
	return nil
}

func (r *Router) orderCreated(ctx context.Context, p orders.OrderCreatedPayload) error {
	return r.deliver(ctx, Input{
		UserID: r.AdminUserID,
		Admin:  true,
		Type:   TypeNewOrder,
		Title:  "New Order",
		Body:   fmt.Sprintf("%s placed an order for %s (x%d)", p.UserName, p.ProductName, p.Quantity),
		Data: map[string]string{
			"orderId": fmt.Sprintf("%d", p.OrderID),
			"userId":  fmt.Sprintf("%d", p.UserID),
		},
	})
}

func (r *Router) ordersFromCart(ctx context.Context, p orders.OrdersCreatedFromCartPayload) error {
	return r.deliver(ctx, Input{
		UserID: r.AdminUserID,
		Admin:  true,
		Type:   TypeNewOrder,
		Title:  "New Orders",
		Body:   fmt.Sprintf("%s placed %d orders from cart", p.UserName, len(p.OrderIDs)),
		Data:   map[string]string{"userId": fmt.Sprintf("%d", p.UserID)},
	})
}

func (r *Router) orderStatusUpdated(ctx context.Context, p orders.OrderStatusUpdatedPayload) error {
	return r.deliver(ctx, Input{
		UserID: p.UserID,
		Type:   TypeOrderStatus,
		Title:  "Order Update",
		Body:   fmt.Sprintf("Your order for %s is now %s", p.ProductName, p.Status),
		Data: map[string]string{
			"orderId": fmt.Sprintf("%d", p.OrderID),
			"status":  string(p.Status),
		},
	})
}

func (r *Router) userRegistered(ctx context.Context, p orders.UserRegisteredPayload) error {
	return r.deliver(ctx, Input{
		UserID: r.AdminUserID,
		Admin:  true,
		Type:   TypeUserRegistration,
		Title:  "New Registration",
		Body:   fmt.Sprintf("%s (%s) registered and awaits approval", p.Name, p.BusinessName),
		Data:   map[string]string{"userId": fmt.Sprintf("%d", p.UserID)},
	})
}

func (r *Router) userStatusChanged(ctx context.Context, p orders.UserStatusChangedPayload) error {
	return r.deliver(ctx, Input{
		UserID: p.UserID,
		Type:   TypeAccountStatus,
		Title:  "Account Update",
		Body:   fmt.Sprintf("Your account is now %s", p.Status),
		Data:   map[string]string{"status": p.Status},
	})
}

func (r *Router) loginRequested(ctx context.Context, p orders.LoginRequestedPayload) error {
	return r.deliver(ctx, Input{
		UserID: r.AdminUserID,
		Admin:  true,
		Type:   TypeLoginRequest,
		Title:  "Login Request",
		Body:   fmt.Sprintf("%s requests a login session", p.UserName),
		Data: map[string]string{
			"requestId": fmt.Sprintf("%d", p.RequestID),
			"userId":    fmt.Sprintf("%d", p.UserID),
		},
	})
}

func (r *Router) loginDecided(ctx context.Context, p orders.LoginRequestDecidedPayload) error {
	notifType := TypeLoginRejected
	title := "Login Rejected"
	body := "Your login request was rejected"
	if p.Status == "approved" {
		notifType = TypeLoginApproved
		title = "Login Approved"
		body = fmt.Sprintf("Your login was approved for %d minutes", p.SessionTimeMinutes)
	}
	data := map[string]string{"requestId": fmt.Sprintf("%d", p.RequestID)}
	if p.Remarks != "" {
		data["remarks"] = p.Remarks
	}
	return r.deliver(ctx, Input{
		UserID: p.UserID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   data,
	})
}

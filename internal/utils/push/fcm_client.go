package push

import (
	"context"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

type FCMClient struct {
	App       *firebase.App
	Messaging *messaging.Client
}

// NewFCMClient инициализирует клиент Firebase Cloud Messaging из файла
// сервисного аккаунта.
func NewFCMClient(serviceAccountPath string) (*FCMClient, error) {
	opt := option.WithCredentialsFile(serviceAccountPath)

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, err
	}

	return &FCMClient{App: app, Messaging: client}, nil
}

// SendPushNotification отправляет push на конкретный токен устройства.
func (f *FCMClient) SendPushNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
	}
	_, err := f.Messaging.Send(ctx, msg)
	return err
}

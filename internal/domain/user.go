package domain

import (
	"time"
)

// User представляет пользователя системы.
// Соответствует таблице 'users' в базе данных.
// Пользователи заводятся по данным из проверенного токена внешнего сервиса авторизации.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Identity - личность вызывающего, извлеченная из токена.
// Нулевой ID означает анонимного пользователя.
type Identity struct {
	UserID    int64
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// Anonymous сообщает, что запрос пришел без аутентификации.
func (i Identity) Anonymous() bool {
	return i.UserID == 0
}

// Profile - пользователь глазами конкретного зрителя
type Profile struct {
	User
	IsSubscribed bool `json:"is_subscribed"`
}

package domain

import (
	"bytes"
	"encoding/json"
)

// Category identifies one book category as embedded in catalog responses.
type Category struct {
	ID  string `json:"_id"`
	Nom string `json:"nom"`
}

// AuthorList decodes the backend's loose author representation: each entry is
// either a plain name string or an object carrying a "nom" field.
type AuthorList []string

func (a *AuthorList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			out = append(out, name)
			continue
		}
		var obj struct {
			Nom string `json:"nom"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return err
		}
		out = append(out, obj.Nom)
	}
	*a = out
	return nil
}

// Book is a catalog entry. The catalog is read-only from the client side.
type Book struct {
	ID         string     `json:"_id"`
	Titre      string     `json:"titre"`
	Auteurs    AuthorList `json:"auteurs"`
	Prix       float64    `json:"prix"`
	Categories []Category `json:"categories"`
}

// Pagination mirrors the server's listing metadata.
type Pagination struct {
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// BookList accepts both listing shapes the backend emits:
// {"data": [...], "pagination": {...}} and a bare array.
type BookList struct {
	Books      []Book
	Pagination *Pagination
}

func (l *BookList) UnmarshalJSON(data []byte) error {
	if isJSONArray(data) {
		var books []Book
		if err := json.Unmarshal(data, &books); err != nil {
			return err
		}
		l.Books = books
		l.Pagination = nil
		return nil
	}
	var envelope struct {
		Data       []Book      `json:"data"`
		Pagination *Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	l.Books = envelope.Data
	l.Pagination = envelope.Pagination
	return nil
}

// CartItem is one line of the user's cart.
type CartItem struct {
	LivreID  string  `json:"livreId"`
	Titre    string  `json:"titre,omitempty"`
	Prix     float64 `json:"prix"`
	Quantite int     `json:"quantite"`
}

// CartPayload accepts {"items": [...]} and bare-array cart responses.
type CartPayload struct {
	Items []CartItem
}

func (c *CartPayload) UnmarshalJSON(data []byte) error {
	if isJSONArray(data) {
		var items []CartItem
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		c.Items = items
		return nil
	}
	var envelope struct {
		Items []CartItem `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	c.Items = envelope.Items
	return nil
}

// isJSONArray reports whether the payload's first significant byte opens an
// array, which decides between the bare-array and envelope response shapes.
func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// CartMutation is the body of cart add/update requests. The server decides
// between create and update based on whether the book is already in the cart.
type CartMutation struct {
	LivreID  string `json:"livreId"`
	Quantite int    `json:"quantite"`
}

// User is the identity derived from the session token's claims.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// Profile is the authenticated user's account resource.
type Profile struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate carries the fields a user may change on their own account.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
}

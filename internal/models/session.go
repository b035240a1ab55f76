package models

import "github.com/golang-jwt/jwt/v5"

// UserSession is the persisted buyer session: auth token plus the buyer
// profile fields the checkout flow needs. The checkout core only ever reads
// it, except for the clear-on-logout path.
type UserSession struct {
	BuyerID string `json:"buyer_id"`
	Token   string `json:"token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// JWT claims issued by the storefront's user API.
type Claims struct {
	BuyerID string `json:"buyer_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

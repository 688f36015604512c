package main

//go:generate swag init -g cmd/hubd/main.go -o docs

// @title           Krypto Hub Order API
// @version         0.1.0
// @description     Limit orders, Jupiter trigger orders, order history and market prices.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

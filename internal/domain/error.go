package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"403"`
	Category string `json:"category" example:"FORBIDDEN"`
	Message  string `json:"message" example:"Acesso ao recurso negado."`
}

// TokenResponse é o corpo de sucesso do registro e do login.
// @Description Token de acesso emitido após registro ou login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

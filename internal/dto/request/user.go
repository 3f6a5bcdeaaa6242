package request

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type ActivateRequest struct {
	Code string `json:"code" validate:"required,len=4,digits"`
}

package web

type AttendanceReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type ErrorResp struct {
	Error string `json:"error"`
}

package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 保证 data 不为 null
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 可以传自定义 msg 覆盖默认
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Validation 422，data.errors 为 字段 -> 信息
func Validation(fields map[string]string) Resp {
	return New(CodeValidation, CodeMsgMap[CodeValidation], gin.H{"errors": fields})
}

// JSON 按业务码写 HTTP 状态
func JSON(c *gin.Context, r Resp) {
	c.JSON(HTTPStatus(r.Code), r)
}

func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(HTTPStatus(code), Error(code, msg))
}

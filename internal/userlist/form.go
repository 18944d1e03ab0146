package userlist

import "go-gin-admin-panel/internal/domain"

// Input 创建 / 编辑对话框的可编辑字段
type Input struct {
	Name                 string `json:"name" form:"name"`
	Email                string `json:"email" form:"email"`
	Role                 string `json:"role" form:"role"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

// InputFrom 编辑时用现有记录预填；密码留空
func InputFrom(u domain.User) Input {
	return Input{Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// FormState 一个对话框独占，不跨对话框共享
type FormState struct {
	Fields   Input
	Errors   map[string]string // 只由服务端校验结果填充
	InFlight bool
	Open     bool
}

func NewForm(in Input) *FormState {
	return &FormState{Fields: in, Open: true}
}

// Begin 提交开始：清掉上一次的错误
func (f *FormState) Begin() {
	f.InFlight = true
	f.Errors = nil
}

func (f *FormState) Finish() { f.InFlight = false }

// Reset 成功后清空并关闭
func (f *FormState) Reset() {
	f.Fields = Input{}
	f.Errors = nil
	f.InFlight = false
	f.Open = false
}

func (f *FormState) Error(field string) string { return f.Errors[field] }

func (f *FormState) HasErrors() bool { return len(f.Errors) > 0 }

// SubmitLabel 提交中显示 working
func (f *FormState) SubmitLabel(idle, working string) string {
	if f.InFlight {
		return working
	}
	return idle
}

// ClearPasswords 回显表单前清掉密码
func (f *FormState) ClearPasswords() {
	f.Fields.Password = ""
	f.Fields.PasswordConfirmation = ""
}

// DeleteDialog 删除确认框
type DeleteDialog struct {
	Target    domain.User
	Confirmed bool
	InFlight  bool
	Open      bool
}

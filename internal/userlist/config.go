package userlist

// ActionStyle 行内按钮或下拉菜单
type ActionStyle string

const (
	ActionsInline   ActionStyle = "inline"
	ActionsDropdown ActionStyle = "dropdown"
)

// Config 列表视图的各个变体用同一个控制器 + 配置表达
type Config struct {
	Title       string
	Create      bool
	Edit        bool
	Delete      bool
	Search      bool
	DarkMode    bool
	ActionStyle ActionStyle
}

type Option func(*Config)

func WithCreate(on bool) Option { return func(c *Config) { c.Create = on } }
func WithEdit(on bool) Option   { return func(c *Config) { c.Edit = on } }
func WithDelete(on bool) Option { return func(c *Config) { c.Delete = on } }
func WithSearch(on bool) Option { return func(c *Config) { c.Search = on } }

func WithDarkMode(on bool) Option { return func(c *Config) { c.DarkMode = on } }

func WithActionStyle(s ActionStyle) Option {
	return func(c *Config) {
		if s == ActionsInline || s == ActionsDropdown {
			c.ActionStyle = s
		}
	}
}

func WithTitle(t string) Option { return func(c *Config) { c.Title = t } }

// NewConfig 默认全功能
func NewConfig(opts ...Option) Config {
	c := Config{
		Title:       "Users",
		Create:      true,
		Edit:        true,
		Delete:      true,
		Search:      true,
		DarkMode:    true,
		ActionStyle: ActionsInline,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// HasActions 行尾是否需要操作列
func (c Config) HasActions() bool { return c.Edit || c.Delete }

func (c Config) Dropdown() bool { return c.ActionStyle == ActionsDropdown }

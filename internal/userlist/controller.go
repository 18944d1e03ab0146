package userlist

import "go-gin-admin-panel/internal/domain"

// Summary 来自服务端元数据
type Summary struct {
	From  int
	To    int
	Total int64
}

// Controller 一个列表视图实例：base 页 + 排序 + 过滤。纯状态，无 I/O。
type Controller struct {
	cfg   Config
	base  Page
	sort  SortState
	query string
}

func NewController(base Page, cfg Config) *Controller {
	return &Controller{base: base, cfg: cfg}
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) Base() Page { return c.base }

func (c *Controller) Sort() SortState { return c.sort }

func (c *Controller) Query() string { return c.query }

func (c *Controller) ToggleSort(f Field) { c.sort = c.sort.Toggle(f) }

// SetSort 从请求参数恢复排序状态
func (c *Controller) SetSort(s SortState) { c.sort = s }

// SetQuery 搜索关闭时忽略
func (c *Controller) SetQuery(q string) {
	if !c.cfg.Search {
		c.query = ""
		return
	}
	c.query = q
}

// Rows = Filter(Sort(base))
func (c *Controller) Rows() []domain.User {
	return Filter(Sort(c.base.Records, c.sort), c.query)
}

func (c *Controller) Summary() Summary {
	return Summary{From: c.base.From, To: c.base.To, Total: c.base.Total}
}

// Find 在当前页里找记录，编辑 / 删除对话框用
func (c *Controller) Find(id uint64) (domain.User, bool) {
	for _, u := range c.base.Records {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

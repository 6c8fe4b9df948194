package param

import (
	"strings"
	"time"
)

// Portal 目标门户的页面契约: 地址、结构化定位表达式(XPath)以及提交后的等待时间.
// 页面布局变化时只需修改配置, 不需要改代码.
type Portal struct {
	URL string `mapstructure:"url" json:"url"`

	StudentLink    string `mapstructure:"student_link" json:"student_link"`
	UserIDInput    string `mapstructure:"user_id_input" json:"user_id_input"`
	PasswordInput  string `mapstructure:"password_input" json:"password_input"`
	SubmitButton   string `mapstructure:"submit_button" json:"submit_button"`
	CourseNames    string `mapstructure:"course_names" json:"course_names"`
	AttendanceRate string `mapstructure:"attendance_rate" json:"attendance_rate"`

	// StepTimeout 每一步等待元素出现并可操作的上限
	StepTimeout time.Duration `mapstructure:"step_timeout" json:"step_timeout"`
	// SettleDelay 提交登录后等待客户端渲染的固定时间, 页面没有可观察的完成信号
	SettleDelay time.Duration `mapstructure:"settle_delay" json:"settle_delay"`
}

const fieldsetRow = "//fieldset[contains(@class, 'bottom-border') and not(contains(@class, 'bottom-border-header'))]//div[contains(@class,'x-column-inner')]"

// DefaultPortal 当前门户布局对应的定位表达式
func DefaultPortal() Portal {
	return Portal{
		URL:            "http://mitsims.in/",
		StudentLink:    "//nav//a[@id='studentLink']",
		UserIDInput:    "//form[@id='studentForm']//input[@id='inputStuId']",
		PasswordInput:  "//form[@id='studentForm']//input[@id='inputPassword']",
		SubmitButton:   "//form[@id='studentForm']//button[@id='studentSubmitButton']",
		CourseNames:    fieldsetRow + "/div[contains(@class,'x-field')][2]//span",
		AttendanceRate: fieldsetRow + "/div[contains(@class,'x-field')][5]//span",
		StepTimeout:    30 * time.Second,
		SettleDelay:    10 * time.Second,
	}
}

func (p *Portal) IsValid() bool {
	for _, s := range []string{
		p.URL,
		p.StudentLink,
		p.UserIDInput,
		p.PasswordInput,
		p.SubmitButton,
		p.CourseNames,
		p.AttendanceRate,
	} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return p.StepTimeout > 0 && p.SettleDelay >= 0
}

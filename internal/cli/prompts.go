package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/laochendeai/tradingagents-go/consts"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

var symbolRe = regexp.MustCompile(`^[0-9]{6}$|^[A-Z0-9.\-]{1,10}$`)

// PromptForSymbol asks for a stock symbol.
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "请输入股票代码（如 600519、000001）：",
		Help:    "A股为6位数字代码",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("股票代码不能为空")
		}
		if !symbolRe.MatchString(str) {
			return fmt.Errorf("股票代码格式不正确")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

// PromptForDepth asks for the analysis depth.
func PromptForDepth() (models.Depth, error) {
	var choice string
	prompt := &survey.Select{
		Message: "请选择分析深度：",
		Options: []string{
			"shallow - 快速分析（1轮辩论）",
			"medium - 标准分析（3轮辩论）",
			"deep - 深度分析（5轮辩论，含策略复核）",
		},
		Default: "medium - 标准分析（3轮辩论）",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	depth, _, _ := strings.Cut(choice, " ")
	return models.Depth(depth), nil
}

// PromptForAnalysts asks which analysts to run.
func PromptForAnalysts() ([]string, error) {
	labels := map[string]string{
		consts.MarketAnalyst:       "技术分析师",
		consts.SocialMediaAnalyst:  "情绪分析师",
		consts.NewsAnalyst:         "新闻分析师",
		consts.FundamentalsAnalyst: "基本面分析师",
	}

	options := make([]string, 0, len(consts.AnalystIDs))
	for _, id := range consts.AnalystIDs {
		options = append(options, fmt.Sprintf("%s (%s)", labels[id], id))
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "请选择参与分析的分析师：",
		Options: options,
		Default: options,
	}
	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		answers, ok := val.([]survey.OptionAnswer)
		if !ok || len(answers) == 0 {
			return fmt.Errorf("至少选择一位分析师")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(selected))
	for _, s := range selected {
		start := strings.LastIndex(s, "(")
		end := strings.LastIndex(s, ")")
		if start >= 0 && end > start {
			ids = append(ids, s[start+1:end])
		}
	}
	return ids, nil
}

// PromptContinue asks whether to run another analysis.
func PromptContinue() (bool, error) {
	confirmed := true
	prompt := &survey.Confirm{
		Message: "继续分析其他股票？",
		Default: true,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

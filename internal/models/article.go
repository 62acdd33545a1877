package models

// 新闻来源标识
const (
	SourceNewsAPI = "NewsAPI"
	SourceNaver   = "Naver News"
)

// NoTitleFound 模型输出中没有“제목:”行时使用的默认标题
const NoTitleFound = "No title found"

// RawArticle 新闻搜索接口返回的原始条目，字段在边界处统一
type RawArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// EnrichedArticle 抓取正文并经模型分类后的文章。
// OriginalTitle 始终保留接口返回的标题，DerivedTitle 为模型给出的标题，
// 两者都保留，由调用方决定展示哪一个。
type EnrichedArticle struct {
	ID            string `json:"id"`
	Keyword       string `json:"keyword,omitempty"`
	OriginalTitle string `json:"original_title"`
	DerivedTitle  string `json:"classification_title,omitempty"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	Source        string `json:"source"`
	FullContent   string `json:"full_content"`

	// Error 为单篇文章失败时的描述，Err 保留原始错误供 errors.Is 判断
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// NewEnriched 以原始条目为基础构造一篇待补全的文章
func NewEnriched(raw RawArticle) EnrichedArticle {
	return EnrichedArticle{
		ID:            raw.ID,
		OriginalTitle: raw.Title,
		URL:           raw.URL,
		Description:   raw.Description,
		Source:        raw.Source,
	}
}

// Title 返回展示用标题：有效的模型标题优先，否则回退到原标题
func (a EnrichedArticle) Title() string {
	if a.DerivedTitle != "" && a.DerivedTitle != NoTitleFound {
		return a.DerivedTitle
	}
	return a.OriginalTitle
}

// Failed 表示该文章在补全过程中失败
func (a EnrichedArticle) Failed() bool {
	return a.Err != nil || a.Error != ""
}

// Fail 记录单篇文章的失败，不清空已有的原始字段
func (a *EnrichedArticle) Fail(err error) {
	if err == nil {
		return
	}
	a.Err = err
	a.Error = err.Error()
	a.FullContent = ""
}

package checklist

type Category string

const (
	LineRichMenu   Category = "line_rich_menu"
	LineMessage    Category = "line_message"
	LineScenario   Category = "line_scenario"
	LineOther      Category = "line_other"
	MEOPost        Category = "meo_post"
	MEOInfoUpdate  Category = "meo_info_update"
	MEOReviewReply Category = "meo_review_reply"
	MEOOther       Category = "meo_other"
)

type Service string

const (
	ServiceLINE Service = "LINE"
	ServiceMEO  Service = "MEO"
)

type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindURL      FieldKind = "url"
	KindDatetime FieldKind = "datetime"
	KindFile     FieldKind = "file"
)

type TemplateField struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	Kind        FieldKind `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
	Placeholder string    `json:"placeholder" yaml:"placeholder,omitempty"`
}

type entry struct {
	label   string
	service Service
	items   []string
	fields  []TemplateField
}

var order = []Category{
	LineRichMenu, LineMessage, LineScenario, LineOther,
	MEOPost, MEOInfoUpdate, MEOReviewReply, MEOOther,
}

var registry = map[Category]entry{
	LineRichMenu: {
		label:   "LINEリッチメニュー修正",
		service: ServiceLINE,
		items: []string{
			"修正対象のリッチメニュー名またはスクリーンショット",
			"修正箇所の具体的な位置（座標やセクション名）",
			"修正後のデザイン指示（色、テキスト、画像等）",
			"リンク先URL（変更がある場合）",
			"反映希望日時",
		},
		fields: []TemplateField{
			{Name: "target_menu", Label: "対象リッチメニュー", Kind: KindText, Required: true, Placeholder: "メインメニュー / サブメニュー等"},
			{Name: "edit_area", Label: "修正箇所", Kind: KindTextarea, Required: true, Placeholder: "左下のボタンのテキストを「予約する」に変更"},
			{Name: "image_url", Label: "画像URL/参考資料", Kind: KindURL, Required: false, Placeholder: "https://..."},
			{Name: "link_url", Label: "リンク先URL", Kind: KindURL, Required: false, Placeholder: "https://..."},
			{Name: "deadline", Label: "反映希望日時", Kind: KindDatetime, Required: true},
		},
	},
	LineMessage: {
		label:   "LINEメッセージ配信",
		service: ServiceLINE,
		items: []string{
			"配信対象のセグメント（全員/特定タグ等）",
			"配信メッセージの完全なテキスト",
			"画像やリッチメッセージの有無と素材",
			"配信日時",
			"テスト配信の要否",
		},
		fields: []TemplateField{
			{Name: "segment", Label: "配信対象", Kind: KindText, Required: true, Placeholder: "全会員 / タグ「新規」等"},
			{Name: "message_text", Label: "配信メッセージ", Kind: KindTextarea, Required: true, Placeholder: "配信する完全なテキストを入力"},
			{Name: "image_url", Label: "画像URL", Kind: KindURL, Required: false, Placeholder: "https://..."},
			{Name: "delivery_datetime", Label: "配信日時", Kind: KindDatetime, Required: true},
			{Name: "test_required", Label: "テスト配信の要否", Kind: KindText, Required: true, Placeholder: "必要 / 不要"},
		},
	},
	LineScenario: {
		label:   "LINEシナリオ設定",
		service: ServiceLINE,
		items: []string{
			"シナリオのトリガー条件",
			"各ステップの具体的なメッセージ内容",
			"分岐条件がある場合のフロー図",
			"タグ付け設定",
			"適用開始日時",
		},
		fields: []TemplateField{
			{Name: "trigger", Label: "トリガー条件", Kind: KindText, Required: true, Placeholder: "友だち追加時 / タグ付与時等"},
			{Name: "steps", Label: "各ステップの内容", Kind: KindTextarea, Required: true, Placeholder: "ステップ1: ... ステップ2: ..."},
			{Name: "tag_settings", Label: "タグ付け設定", Kind: KindText, Required: false, Placeholder: "「来店済み」タグを付与"},
			{Name: "start_datetime", Label: "適用開始日時", Kind: KindDatetime, Required: true},
		},
	},
	LineOther: {
		label:   "LINE その他",
		service: ServiceLINE,
		items: []string{
			"作業内容の詳細な説明",
			"対象アカウント名",
			"期待する完成イメージ",
			"期限",
		},
		fields: []TemplateField{
			{Name: "details", Label: "作業内容の詳細", Kind: KindTextarea, Required: true, Placeholder: "具体的な作業内容を記述"},
			{Name: "account_name", Label: "対象アカウント名", Kind: KindText, Required: true},
			{Name: "expected_result", Label: "期待する完成イメージ", Kind: KindTextarea, Required: true},
			{Name: "deadline", Label: "期限", Kind: KindDatetime, Required: true},
		},
	},
	MEOPost: {
		label:   "MEO投稿代行",
		service: ServiceMEO,
		items: []string{
			"投稿するGoogleビジネスプロフィール名",
			"投稿テキストの完全な内容",
			"投稿画像（添付またはURL）",
			"投稿カテゴリ（最新情報/イベント/特典）",
			"投稿日時",
		},
		fields: []TemplateField{
			{Name: "profile_name", Label: "Googleビジネスプロフィール名", Kind: KindText, Required: true, Placeholder: "店舗名を入力"},
			{Name: "post_text", Label: "投稿テキスト", Kind: KindTextarea, Required: true, Placeholder: "投稿する完全なテキストを入力"},
			{Name: "image_url", Label: "投稿画像URL", Kind: KindURL, Required: false, Placeholder: "https://..."},
			{Name: "post_category", Label: "投稿カテゴリ", Kind: KindText, Required: true, Placeholder: "最新情報 / イベント / 特典"},
			{Name: "post_datetime", Label: "投稿日時", Kind: KindDatetime, Required: true},
		},
	},
	MEOInfoUpdate: {
		label:   "MEO情報更新",
		service: ServiceMEO,
		items: []string{
			"更新対象のGoogleビジネスプロフィール名",
			"更新する項目（営業時間/住所/電話番号/説明文等）",
			"更新後の具体的な内容",
			"反映希望日時",
		},
		fields: []TemplateField{
			{Name: "profile_name", Label: "Googleビジネスプロフィール名", Kind: KindText, Required: true, Placeholder: "店舗名を入力"},
			{Name: "update_item", Label: "更新する項目", Kind: KindText, Required: true, Placeholder: "営業時間 / 住所 / 電話番号 / 説明文等"},
			{Name: "update_content", Label: "更新後の具体的な内容", Kind: KindTextarea, Required: true},
			{Name: "deadline", Label: "反映希望日時", Kind: KindDatetime, Required: true},
		},
	},
	MEOReviewReply: {
		label:   "MEO口コミ返信",
		service: ServiceMEO,
		items: []string{
			"対象の口コミ内容（スクリーンショットまたはテキスト）",
			"返信のトーン・方針",
			"返信テキスト案（あれば）",
			"対応期限",
		},
		fields: []TemplateField{
			{Name: "review_content", Label: "対象の口コミ内容", Kind: KindTextarea, Required: true, Placeholder: "口コミの内容をコピー&ペースト"},
			{Name: "reply_tone", Label: "返信のトーン", Kind: KindText, Required: true, Placeholder: "丁寧 / カジュアル / お詫び等"},
			{Name: "reply_draft", Label: "返信テキスト案", Kind: KindTextarea, Required: false, Placeholder: "あればテキスト案を入力"},
			{Name: "deadline", Label: "対応期限", Kind: KindDatetime, Required: true},
		},
	},
	MEOOther: {
		label:   "MEO その他",
		service: ServiceMEO,
		items: []string{
			"作業内容の詳細な説明",
			"対象のGoogleビジネスプロフィール名",
			"期待する完成イメージ",
			"期限",
		},
		fields: []TemplateField{
			{Name: "details", Label: "作業内容の詳細", Kind: KindTextarea, Required: true, Placeholder: "具体的な作業内容を記述"},
			{Name: "profile_name", Label: "Googleビジネスプロフィール名", Kind: KindText, Required: true},
			{Name: "expected_result", Label: "期待する完成イメージ", Kind: KindTextarea, Required: true},
			{Name: "deadline", Label: "期限", Kind: KindDatetime, Required: true},
		},
	},
}

// Categories returns every known category, LINE family first.
func Categories() []Category {
	out := make([]Category, len(order))
	copy(out, order)
	return out
}

func Valid(c Category) bool {
	_, ok := registry[c]
	return ok
}

// ChecklistFor returns the ordered required-information items for c.
// Unknown categories yield an empty slice so callers fall back to a
// free-text review.
func ChecklistFor(c Category) []string {
	e, ok := registry[c]
	if !ok {
		return []string{}
	}
	out := make([]string, len(e.items))
	copy(out, e.items)
	return out
}

// TemplateFieldsFor returns the ordered structured form fields for c.
func TemplateFieldsFor(c Category) []TemplateField {
	e, ok := registry[c]
	if !ok {
		return []TemplateField{}
	}
	out := make([]TemplateField, len(e.fields))
	copy(out, e.fields)
	return out
}

func Label(c Category) string {
	if e, ok := registry[c]; ok {
		return e.label
	}
	return string(c)
}

func ServiceOf(c Category) Service {
	return registry[c].service
}

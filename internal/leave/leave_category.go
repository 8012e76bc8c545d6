package leave

const (
	CategoryAnnualLeave  = "annual_leave"
	CategoryPersonal     = "personal"
	CategoryRemote       = "remote"
	CategoryBusiness     = "business"
	CategorySick         = "sick"
	CategorySpecialLeave = "special_leave"
	CategoryOther        = "other"
)

// Category carries the display metadata the email report renders for each
// leave bucket. The keyword lists double as the TF-IDF corpus: one document
// per category.
type Category struct {
	Key      string
	Label    string
	Icon     string
	Color    string
	Keywords []string
}

var categories = []Category{
	{
		Key:   CategoryAnnualLeave,
		Label: "Phép năm",
		Icon:  "🏖️",
		Color: "#28a745",
		Keywords: []string{
			"phép năm", "nghỉ phép", "annual leave", "vacation", "holiday",
			"du lịch", "đi chơi", "nghỉ mát", "resort", "biển", "núi",
			"về quê", "thăm quê", "nghỉ dưỡng", "thư giãn", "relax",
			"break", "nghỉ ngơi", "rest", "phục hồi", "tái tạo năng lượng",
			"đi du lịch", "travel", "trip", "picnic", "tour", "khám phá",
			"nghỉ lễ", "long weekend", "nghỉ cuối tuần", "staycation",
		},
	},
	{
		Key:   CategoryPersonal,
		Label: "Cá nhân",
		Icon:  "👤",
		Color: "#6f42c1",
		Keywords: []string{
			"cá nhân", "việc riêng", "bận việc cá nhân", "công việc cá nhân",
			"giải quyết việc", "làm việc cá nhân", "việc tư", "tự do",
			"mua sắm", "đi ngân hàng", "làm giấy tờ", "visa", "hộ chiếu",
			"sửa nhà", "chuyển nhà", "dọn nhà", "việc nhà",
		},
	},
	{
		Key:   CategoryRemote,
		Label: "Remote",
		Icon:  "💻",
		Color: "#17a2b8",
		Keywords: []string{
			"remote", "work from home", "wfh", "làm việc từ xa", "outside",
			"làm việc tại nhà", "online", "từ xa", "không đến công ty",
			"ở nhà làm việc", "home office", "telecommuting", "virtual work",
		},
	},
	{
		Key:   CategoryBusiness,
		Label: "Công tác",
		Icon:  "💼",
		Color: "#fd7e14",
		Keywords: []string{
			"công tác", "business trip", "công việc", "meeting", "họp",
			"hội nghị", "đào tạo", "khóa học", "seminar", "conference",
			"gặp khách hàng", "partner", "đối tác", "dự án", "project",
			"ra ngoài công tác", "đi công tác", "business",
		},
	},
	{
		Key:   CategorySick,
		Label: "Đau ốm",
		Icon:  "🤒",
		Color: "#dc3545",
		Keywords: []string{
			"ốm", "bệnh", "đau", "sốt", "cảm", "ho", "khám bệnh", "chữa bệnh",
			"bác sĩ", "bệnh viện", "phòng khám", "điều trị", "thuốc", "y tế",
			"sức khỏe", "không khỏe", "mệt", "kiệt sức", "stress", "lo âu",
			"sick", "ill", "medical", "doctor", "hospital", "fever", "cold",
			"đau đầu", "đau bụng", "đau răng", "cúm", "viêm họng", "ho khan",
			"sốt cao", "sốt nhẹ", "cảm lạnh", "cảm cúm", "không được khỏe",
			"đi khám", "tái khám", "xét nghiệm", "chụp phim", "siêu âm",
		},
	},
	{
		Key:   CategorySpecialLeave,
		Label: "Chế độ đặc biệt",
		Icon:  "👨‍👩‍👧‍👦",
		Color: "#e83e8c",
		Keywords: []string{
			"thai sản", "sinh con", "maternity", "paternity", "đám cưới", "cưới",
			"wedding", "đám tang", "tang lễ", "funeral", "ma chay", "hiếu hỷ",
			"gia đình", "bố", "mẹ", "con", "vợ", "chồng", "ông", "bà", "cháu",
			"họp mặt gia đình", "việc gia đình", "chăm sóc", "người thân",
			"khẩn cấp", "gấp", "emergency", "cứu cấp", "tai nạn", "sự cố",
			"bất ngờ", "đột xuất",
		},
	},
}

var defaultCategory = Category{
	Key:   CategoryOther,
	Label: "Khác",
	Icon:  "📝",
	Color: "#6c757d",
}

// Categories returns the fixed classification table, default excluded.
func Categories() []Category {
	return categories
}

// DefaultCategory is the fallback bucket for unclassifiable reasons.
func DefaultCategory() Category {
	return defaultCategory
}

// CategoryByKey returns the category for a key, default when unknown.
func CategoryByKey(key string) Category {
	for _, c := range categories {
		if c.Key == key {
			return c
		}
	}
	return defaultCategory
}

package snapshot

type partnerActivity struct {
	signals   []Row
	comments  []Row
	campaigns []Row
	logs      []Row
}

// activity is the recorded dashboard activity per partner.
var activity = map[string]partnerActivity{
	"allmax": {
		signals: []Row{
			R("id", "sig-9821", "user", "@liftlife", "campaign", "Black Friday Boost", "partner", "Allmax", "ts", "2025-11-14T09:41:00Z", "route", "Conversion"),
			R("id", "sig-9818", "user", "@coachjo", "campaign", "Macro Mentor", "partner", "Allmax", "ts", "2025-11-14T09:20:00Z", "route", "Community"),
		},
		comments: []Row{
			R("id", "c-1001", "persona", "Allmax Coach", "preview", "Dialing in macros for winter cut…", "status", "approved", "ts", "2025-11-14T09:40:00Z"),
			R("id", "c-1002", "persona", "Allmax Form Coach", "preview", "Stack tip: pump + hydration…", "status", "queued", "ts", "2025-11-14T09:25:00Z"),
		},
		campaigns: []Row{
			R("id", "camp-77", "name", "Black Friday Boost", "ctr", 4.9, "cvr", 2.1, "spend", 18200),
			R("id", "camp-72", "name", "Macro Mentor", "ctr", 3.4, "cvr", 1.5, "spend", 9200),
		},
		logs: []Row{
			R("id", "log-1", "ts", "2025-11-14T09:45:00Z", "message", "Signal ingested for @liftlife", "level", "info"),
			R("id", "log-2", "ts", "2025-11-14T09:32:00Z", "message", "Comment Engine deploy completed", "level", "success"),
		},
	},
	"adeeva": {
		signals: []Row{
			R("id", "sig-771", "user", "@cliniciank", "campaign", "Gut Reset", "partner", "Adeeva", "ts", "2025-11-14T08:14:00Z", "route", "Education"),
			R("id", "sig-766", "user", "@biomebetty", "campaign", "Immune Health", "partner", "Adeeva", "ts", "2025-11-14T07:56:00Z", "route", "Care"),
		},
		comments: []Row{
			R("id", "c-501", "persona", "Adeeva Clinician", "preview", "New journal data on…", "status", "review", "ts", "2025-11-14T08:10:00Z"),
			R("id", "c-505", "persona", "Adeeva Clinician", "preview", "Supplement pairing tip…", "status", "approved", "ts", "2025-11-14T07:50:00Z"),
		},
		campaigns: []Row{
			R("id", "camp-31", "name", "Gut Reset", "ctr", 3.1, "cvr", 1.9, "spend", 6400),
			R("id", "camp-29", "name", "Immune Health", "ctr", 2.4, "cvr", 1.1, "spend", 4100),
		},
		logs: []Row{
			R("id", "log-10", "ts", "2025-11-14T09:01:00Z", "message", "Persona sync staged for Adeeva Clinician", "level", "info"),
			R("id", "log-11", "ts", "2025-11-14T08:42:00Z", "message", "Latency alert resolved (edge cluster 2)", "level", "success"),
		},
	},
	"gima": {
		signals: []Row{
			R("id", "sig-501", "user", "@learninglane", "campaign", "Exam Sprint", "partner", "GIMA", "ts", "2025-11-14T05:33:00Z", "route", "Education"),
			R("id", "sig-498", "user", "@mentormaya", "campaign", "STEM Pathways", "partner", "GIMA", "ts", "2025-11-14T05:20:00Z", "route", "Guidance"),
		},
		comments: []Row{
			R("id", "c-301", "persona", "GIMA Tutor", "preview", "New study flow for finals…", "status", "approved", "ts", "2025-11-14T05:25:00Z"),
			R("id", "c-302", "persona", "GIMA Mentor", "preview", "Scholarship reminder…", "status", "queued", "ts", "2025-11-14T05:18:00Z"),
		},
		campaigns: []Row{
			R("id", "camp-51", "name", "Exam Sprint", "ctr", 5.2, "cvr", 2.7, "spend", 15000),
			R("id", "camp-49", "name", "STEM Pathways", "ctr", 4.1, "cvr", 2.0, "spend", 10800),
		},
		logs: []Row{
			R("id", "log-21", "ts", "2025-11-14T06:10:00Z", "message", "Edge deploy completed for Comment Engine v2", "level", "success"),
			R("id", "log-22", "ts", "2025-11-14T05:58:00Z", "message", "Signal replay request queued", "level", "warn"),
		},
	},
}

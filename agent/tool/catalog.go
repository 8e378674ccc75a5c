package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
)

const (
	NameFetch  = "fetch_interaction_tool"
	NameUpdate = "update_interaction_tool"
)

var kindByName = map[string]contractx.ToolKind{
	NameFetch:  contractx.ToolFetch,
	NameUpdate: contractx.ToolUpdate,
}

// Infos returns the tool definitions for the given kinds, in order.
func Infos(kinds ...contractx.ToolKind) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(kinds))
	for _, kind := range kinds {
		switch kind {
		case contractx.ToolFetch:
			infos = append(infos, fetchInfo())
		case contractx.ToolUpdate:
			infos = append(infos, updateInfo())
		}
	}
	return infos
}

func fetchInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: NameFetch,
		Desc: "Fetches interaction records from the database by HCP name and date. " +
			"Use this tool when the user asks to populate, find, or load a meeting. " +
			"The date must be in YYYY-MM-DD format.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"hcp_name":         {Type: schema.String, Desc: "Name of the healthcare professional", Required: true},
			"interaction_date": {Type: schema.String, Desc: "Date of the interaction, YYYY-MM-DD", Required: true},
		}),
	}
}

func updateInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: NameUpdate,
		Desc: "Updates an existing interaction record. Best to use interaction_id if available. " +
			"Otherwise, it requires hcp_name and interaction_date to find the record. " +
			"Only pass the new_* fields the user wants to change. Dates must be in YYYY-MM-DD format.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"interaction_id":       {Type: schema.Integer, Desc: "ID of the interaction to update"},
			"hcp_name":             {Type: schema.String, Desc: "Current HCP name, used to find the record when no ID is known"},
			"interaction_date":     {Type: schema.String, Desc: "Current interaction date (YYYY-MM-DD), used to find the record when no ID is known"},
			"new_hcp_name":         {Type: schema.String, Desc: "Corrected HCP name"},
			"new_interaction_type": {Type: schema.String, Desc: "New interaction type, e.g. Meeting or Call"},
			"new_interaction_date": {Type: schema.String, Desc: "New interaction date, YYYY-MM-DD"},
			"new_summary":          {Type: schema.String, Desc: "New summary"},
			"new_sentiment": {
				Type: schema.String,
				Desc: "New sentiment",
				Enum: []string{"Positive", "Neutral", "Negative"},
			},
			"new_outcomes":  {Type: schema.String, Desc: "New outcomes"},
			"new_follow_up": {Type: schema.String, Desc: "New follow-up actions"},
			"new_discussion_topics": {
				Type:     schema.Array,
				Desc:     "New list of discussion topics",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
		}),
	}
}

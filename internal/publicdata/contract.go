package publicdata

// EntityType selects the column contract applied to a record before it
// leaves the server on an unauthenticated path.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityService      EntityType = "service"
	EntityPost         EntityType = "post"
	EntityFAQ          EntityType = "faq"
)

// Contract pairs an allowlist with a blocklist per entity. The allowlist
// alone drives runtime behavior: anything not on it is stripped. The
// blocklist documents columns that must never leave the server and lets
// tests prove the two sets stay disjoint.
type Contract struct {
	Allow []string
	Block []string
}

var contracts = map[EntityType]Contract{
	EntityOrganization: {
		Allow: []string{
			"id", "slug", "name", "tagline", "description",
			"website", "city", "country", "logo_url", "categories",
			"opening_hours", "published_at",
		},
		Block: []string{
			"owner_id", "owner_email", "billing_email", "plan",
			"stripe_customer_id", "internal_notes", "member_emails",
			"api_token", "created_by", "deleted_at",
		},
	},
	EntityService: {
		Allow: []string{
			"id", "slug", "title", "summary", "description",
			"price_display", "duration_minutes", "image_url",
		},
		Block: []string{
			"org_id", "cost_price", "margin", "internal_notes", "created_by",
		},
	},
	EntityPost: {
		Allow: []string{
			"id", "slug", "title", "excerpt", "body_html",
			"cover_url", "published_at", "author_display_name",
		},
		Block: []string{
			"org_id", "author_id", "author_email", "draft_body", "internal_notes",
		},
	},
	EntityFAQ: {
		Allow: []string{
			"id", "question", "answer", "position",
		},
		Block: []string{
			"org_id", "created_by", "internal_notes",
		},
	},
}

// ContractFor returns the contract for an entity type. Unknown entity types
// get an empty allowlist, so every field is stripped.
func ContractFor(entity EntityType) Contract {
	return contracts[entity]
}

// Contracts returns all registered contracts, for parity checks.
func Contracts() map[EntityType]Contract {
	out := make(map[EntityType]Contract, len(contracts))
	for k, v := range contracts {
		out[k] = v
	}
	return out
}

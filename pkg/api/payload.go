package api

type (
	// SignupPayload is the role-tagged account-creation request. Leisure
	// sessions fill the travel fields; business sessions fill the company
	// fields. Both carry the swipe outcomes and location label
	SignupPayload struct {
		Type     FlowKind `json:"type"`
		Email    string   `json:"email"`
		Location string   `json:"location,omitempty"`
		Likes    []CardID `json:"likes,omitempty"`
		Dislikes []CardID `json:"dislikes,omitempty"`

		// leisure
		Name          string   `json:"name,omitempty"`
		TravelReasons []string `json:"traveling_reasons,omitempty"`
		InterestTags  []string `json:"interest_tags,omitempty"`
		BudgetMin     int      `json:"budget_min,omitempty"`
		BudgetMax     int      `json:"budget_max,omitempty"`

		// business
		FullName        string   `json:"full_name,omitempty"`
		TravelGoal      string   `json:"traveling_goal,omitempty"`
		ConnectionTags  []string `json:"connection_tags,omitempty"`
		IndustryTags    []string `json:"industry_tags,omitempty"`
		NetworkingStyle string   `json:"networking_style,omitempty"`
		Expertise       string   `json:"expertise,omitempty"`
		Role            string   `json:"role,omitempty"`
		Company         string   `json:"company,omitempty"`
		Industries      []string `json:"industries,omitempty"`
		Stage           string   `json:"stage,omitempty"`
	}

	// VerifyRequest validates a one-time code for an email
	VerifyRequest struct {
		Email   string `json:"email"`
		OTPCode string `json:"otp_code"`
	}

	// AuthUser is the account record returned by a successful verification
	AuthUser struct {
		ID       string   `json:"id"`
		Email    string   `json:"email"`
		FullName string   `json:"full_name,omitempty"`
		Type     FlowKind `json:"type,omitempty"`
	}

	// VerifyResponse is the successful verification response. TokenType
	// defaults to "Bearer" when the server omits it
	VerifyResponse struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type,omitempty"`
		User        *AuthUser `json:"user"`
	}

	// Card is one recommendable item from the content feed; the engine only
	// consumes its ID, title, and category
	Card struct {
		ID       CardID `json:"id"`
		Title    string `json:"title"`
		Category string `json:"category,omitempty"`
	}

	// LocationPreference is written through to the preference store, either
	// as a current-location shape (with coordinates, possibly zeroed) or a
	// named-location shape (without)
	LocationPreference struct {
		Current   bool    `json:"current"`
		Label     string  `json:"label"`
		Name      string  `json:"name,omitempty"`
		PlaceID   string  `json:"place_id,omitempty"`
		Latitude  float64 `json:"latitude,omitempty"`
		Longitude float64 `json:"longitude,omitempty"`
	}
)

// DefaultTokenType fills VerifyResponse.TokenType when absent
const DefaultTokenType = "Bearer"

package registry

import "github.com/aretw0/guidepost/pkg/domain"

// Tour ids of the builtin catalog.
const (
	TourAdminDashboard          = "admin-dashboard"
	TourAdminProductForm        = "admin-product-form"
	TourAdminDealerVerification = "admin-dealer-verification"
	TourAdminQuotations         = "admin-quotations"
	TourAdminUsers              = "admin-users"
	TourAdminBlogForm           = "admin-blog-form"
	TourAdminTeamForm           = "admin-team-form"
	TourAdminCaseStudyForm      = "admin-case-study-form"

	TourDealerRegistration       = "dealer-registration"
	TourDealerCompanyDetails     = "dealer-company-details"
	TourDealerDocuments          = "dealer-documents"
	TourDealerInstallationSample = "dealer-installation-example"
	TourDealerProfile            = "dealer-profile"
)

// Builtin returns a registry preloaded with the website's tours.
func Builtin() *Registry {
	r := NewRegistry()
	for _, t := range BuiltinTours() {
		r.Register(t)
	}
	return r
}

// BuiltinTours returns the website's tour catalog.
func BuiltinTours() []domain.Tour {
	admin := []domain.Role{domain.RoleAdministrator}
	dealer := []domain.Role{domain.RoleDealer}

	return []domain.Tour{
		{
			ID:    TourAdminDashboard,
			Title: "Dashboard overview",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="sidebar"]`, "Navigation", "Every admin section is reachable from the sidebar.", domain.PlacementRight, true),
				step(`[data-tour="stats"]`, "Key figures", "Pending dealers, open quotations and published products at a glance.", domain.PlacementBottom, false),
				step(`[data-tour="recent-activity"]`, "Recent activity", "The latest registrations and quotation requests.", domain.PlacementTop, false),
				step(`[data-tour="user-menu"]`, "Your account", "Sign out or switch language from here.", domain.PlacementLeft, false),
			},
		},
		{
			ID:    TourAdminProductForm,
			Title: "Adding a product",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[name="name"]`, "Product name", "Shown as the heading on the catalog page.", domain.PlacementBottom, true),
				step(`[name="category"]`, "Category", "Controls where the product is listed in the catalog.", domain.PlacementBottom, false),
				step(`[name="description"]`, "Description", "Markdown is supported.", domain.PlacementTop, false),
				step(`[name="specifications"]`, "Specifications", "One technical attribute per row.", domain.PlacementTop, false),
				step(`#product-images`, "Images", "The first image becomes the catalog thumbnail.", domain.PlacementLeft, false),
				step(`button[type="submit"]`, "Save", "Products are published immediately after saving.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourAdminDealerVerification,
			Title: "Verifying dealers",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="dealer-filters"]`, "Filters", "Narrow the list by status or region.", domain.PlacementBottom, true),
				step(`[data-tour="dealer-table"]`, "Dealer list", "Pending dealers are listed first.", domain.PlacementTop, false),
				step(`[data-tour="dealer-documents"]`, "Documents", "Open the uploaded certificates before deciding.", domain.PlacementLeft, false),
				step(`[data-tour="verify-actions"]`, "Approve or reject", "The dealer is notified by e-mail.", domain.PlacementLeft, false),
				step(`[data-tour="pagination"]`, "Pagination", "Results are paged ten at a time.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourAdminQuotations,
			Title: "Handling quotations",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="quotation-list"]`, "Requests", "Incoming quotation requests, newest first.", domain.PlacementBottom, true),
				step(`[data-tour="quotation-status"]`, "Status", "Move a request from new to quoted to closed.", domain.PlacementLeft, false),
				step(`[data-tour="quotation-reply"]`, "Reply", "Send the price offer to the customer.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourAdminUsers,
			Title: "Managing users",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="user-table"]`, "Users", "Administrators and dealers with a login.", domain.PlacementBottom, true),
				step(`[data-tour="user-role"]`, "Roles", "Promote or demote accounts.", domain.PlacementLeft, false),
				step(`[data-tour="user-invite"]`, "Invite", "Send an invitation link to a new administrator.", domain.PlacementBottom, false),
			},
		},
		{
			ID:    TourAdminBlogForm,
			Title: "Writing a blog post",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[name="title"]`, "Title", "Also used to generate the post URL.", domain.PlacementBottom, true),
				step(`#cover-image`, "Cover image", "Displayed on the blog index.", domain.PlacementRight, false),
				step(`[name="body"]`, "Body", "Write the article in the editor.", domain.PlacementTop, false),
				step(`[name="published"]`, "Publish", "Unpublished posts stay as drafts.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourAdminTeamForm,
			Title: "Adding a team member",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[name="full_name"]`, "Name", "As shown on the about page.", domain.PlacementBottom, true),
				step(`[name="position"]`, "Position", "Job title under the name.", domain.PlacementBottom, false),
				step(`#team-photo`, "Photo", "Square photos work best.", domain.PlacementRight, false),
			},
		},
		{
			ID:    TourAdminCaseStudyForm,
			Title: "Publishing a case study",
			Roles: admin,
			Steps: []domain.StepDescriptor{
				step(`[name="client"]`, "Client", "The customer the project was delivered to.", domain.PlacementBottom, true),
				step(`[name="summary"]`, "Summary", "One paragraph shown on the listing.", domain.PlacementTop, false),
				step(`#case-gallery`, "Gallery", "Before and after photos of the installation.", domain.PlacementLeft, false),
				step(`[name="products"]`, "Products used", "Links the case study to catalog entries.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourDealerRegistration,
			Title: "Registration overview",
			Roles: dealer,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="registration-steps"]`, "Three steps", "Company details, documents and an installation example.", domain.PlacementBottom, true),
				step(`[data-tour="registration-status"]`, "Status", "Shows whether your registration is pending or verified.", domain.PlacementLeft, false),
				step(`[data-tour="registration-help"]`, "Help", "Restart this tour at any time.", domain.PlacementCenter, false),
			},
		},
		{
			ID:    TourDealerCompanyDetails,
			Title: "Company details",
			Roles: dealer,
			Steps: []domain.StepDescriptor{
				step(`[name="company_name"]`, "Company name", "Use the registered legal name.", domain.PlacementBottom, true),
				step(`[name="tax_number"]`, "Tax number", "Used to verify the company.", domain.PlacementBottom, false),
				step(`[name="address"]`, "Address", "Shown on the public dealer map.", domain.PlacementTop, false),
				step(`[name="phone"]`, "Phone", "Customers call this number.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourDealerDocuments,
			Title: "Uploading documents",
			Roles: dealer,
			Steps: []domain.StepDescriptor{
				step(`#certificate-upload`, "Certificates", "PDF or image, up to 10 MB each.", domain.PlacementRight, true),
				step(`[data-tour="document-list"]`, "Uploaded files", "Remove and re-upload a file to replace it.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourDealerInstallationSample,
			Title: "Installation example",
			Roles: dealer,
			Steps: []domain.StepDescriptor{
				step(`[name="project_title"]`, "Project", "A short name for the installation.", domain.PlacementBottom, true),
				step(`#installation-photos`, "Photos", "Add at least two photos of the finished work.", domain.PlacementRight, false),
				step(`[name="project_description"]`, "Description", "What was installed and where.", domain.PlacementTop, false),
			},
		},
		{
			ID:    TourDealerProfile,
			Title: "Your profile",
			Roles: dealer,
			Steps: []domain.StepDescriptor{
				step(`[data-tour="profile-card"]`, "Profile", "This is how customers see your company.", domain.PlacementBottom, true),
				step(`[data-tour="profile-certificates"]`, "Certificates", "Verified certificates earn a badge.", domain.PlacementLeft, false),
				step(`[data-tour="profile-edit"]`, "Edit", "Update your details at any time.", domain.PlacementLeft, false),
			},
		},
	}
}

func step(target, title, body string, placement domain.Placement, first bool) domain.StepDescriptor {
	return domain.StepDescriptor{
		Target:    target,
		Content:   domain.StepContent{Title: title, Body: body},
		Placement: placement,
		FirstStep: first,
	}
}

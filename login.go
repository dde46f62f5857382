// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"strings"

	"code.hybscloud.com/kont"
	"github.com/google/uuid"
)

// Experiment sets announced by qe/sync.
const (
	LoginExperiments = "ig_android_sms_consent_in_reg,ig_android_flexible_sampling_universe,ig_android_background_conf_resend_fix,ig_restore_focus_on_reg_textbox_universe,ig_android_analytics_data_loss,ig_android_gmail_oauth_in_reg,ig_android_phoneid_sync_interval,ig_android_stay_at_one_tap_on_error,ig_android_link_to_access_if_email_taken_in_reg,ig_android_non_fb_sso,ig_android_family_apps_user_values_provider_universe,ig_android_reg_inline_errors,ig_android_run_fb_reauth_on_background,ig_fbns_push,ig_android_reg_omnibox,ig_android_show_password_in_reg_universe,ig_android_background_phone_confirmation_v2,ig_fbns_blocked,ig_android_access_redesign,ig_android_please_create_username_universe,ig_android_gmail_oauth_in_access,ig_android_reg_whiteout_redesign_v3"
	Experiments      = "ig_android_disk_cache_match_journal_size_to_max_size,ig_android_ad_holdout_16m5_universe,ig_android_2fac_auth_fix,ig_android_alarm_manager_universe,ig_android_enable_share_to_whatsapp,ig_android_direct_thread_ui_rewrite,ig_android_feed_seen_state_with_view_info,ig_android_profile_photo_as_media,ig_android_user_ad_tracking_universe,ig_android_promotion_insights_logging,ig_android_business_conversion_social_context,ig_android_video_captions_universe,ig_android_direct_inbox_recyclerview,ig_android_feed_refresh_on_swipe_down,ig_android_explore_load_more,ig_android_pinned_tabs,ig_android_disable_comment_public_test"
)

// Login returns the three-step login operation: announce the login
// experiments, fetch the csrf cookie, then authenticate with it. On
// completion st holds the credentials, the user id and the derived rank
// token. st is left untouched until the final reply is read, apart from
// the cookies merged by the session middleware.
func Login(st *State, username, password string) Protocol {
	return func() Exchange {
		return NewExchange("login", login(st, username, password))
	}
}

// Relogin returns Login for the credentials recorded in st, read when
// the exchange is created.
func Relogin(st *State) Protocol {
	return func() Exchange {
		username, password, ok := st.Credentials()
		if !ok {
			return FailedExchange("login", ErrNotLoggedIn)
		}
		return Login(st, username, password)()
	}
}

func login(st *State, username, password string) kont.Eff[Body] {
	sync := NewPost("qe/sync/", Sign(Fields{
		F("id", uuid.NewString()),
		F("experiments", LoginExperiments),
	}))
	headers := NewGet("si/fetch_headers/",
		F("challenge_type", "signup"),
		F("guid", strings.ReplaceAll(uuid.NewString(), "-", "")),
	)
	return CallThen(sync, CallBind(headers, func(resp *Response) kont.Eff[Body] {
		csrf, ok := resp.Cookies[CookieCSRF]
		if !ok {
			if csrf, ok = st.Cookie(CookieCSRF); !ok {
				return Fail[Body](ErrMissingCSRF)
			}
		}
		auth := NewPost("accounts/login/", Sign(Fields{
			F("phone_id", uuid.NewString()),
			F("_csrftoken", csrf),
			F("username", username),
			F("password", password),
			F("guid", st.DeviceUUID()),
			F("device_id", DeviceID(username, password)),
			F("login_attempt_count", 0),
		}))
		return CallBind(auth, func(resp *Response) kont.Eff[Body] {
			pk := resp.Body.Get("logged_in_user.pk")
			if !pk.Exists() || pk.Int() == 0 {
				return Fail[Body](ErrMalformedLogin)
			}
			st.completeLogin(username, password, pk.Int())
			return kont.Pure(resp.Body)
		})
	}))
}

// Logout ends the remote session.
func Logout() Protocol {
	return Op("logout", func() kont.Eff[Body] {
		return CallDone(NewGet("accounts/logout/"))
	})
}

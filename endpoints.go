// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package igx

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.hybscloud.com/kont"
)

//
// Endpoint catalog. Every builder returns a single-step Protocol unless
// stated otherwise; request data that depends on state is read when the
// exchange is created, so a restarted operation signs with fresh cookies.
//

// read is a GET operation whose query is built at exchange creation.
func read(name, path string, query func() (Fields, error)) Protocol {
	return Op(name, func() kont.Eff[Body] {
		var params Fields
		if query != nil {
			var err error
			if params, err = query(); err != nil {
				return Fail[Body](err)
			}
		}
		return CallDone(NewGet(path, params...))
	})
}

// write is a signed POST carrying the identity prefix followed by extra.
func write(st *State, name, path string, extra ...Field) Protocol {
	return Op(name, func() kont.Eff[Body] {
		fields, err := st.authFields(extra...)
		if err != nil {
			return Fail[Body](err)
		}
		return CallDone(NewPost(path, Sign(fields)))
	})
}

// ranked returns the rank token query prefix followed by extra.
func ranked(st *State, extra ...Field) func() (Fields, error) {
	return func() (Fields, error) {
		token, ok := st.RankToken()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return append(Fields{F("rank_token", token)}, extra...), nil
	}
}

// paged appends max_id when a cursor is given.
func paged(fs Fields, maxID string) Fields {
	if maxID != "" {
		fs = append(fs, F("max_id", maxID))
	}
	return fs
}

// userPath formats path with userID, or with the logged in user when
// userID is zero. Resolution happens at exchange creation.
func userPath(st *State, format string, userID int64) (string, error) {
	if userID == 0 {
		id, ok := st.UsernameID()
		if !ok {
			return "", ErrNotLoggedIn
		}
		userID = id
	}
	return fmt.Sprintf(format, userID), nil
}

// readUser is read for a path addressed by user id.
func readUser(st *State, name, format string, userID int64, query func() (Fields, error)) Protocol {
	return Op(name, func() kont.Eff[Body] {
		path, err := userPath(st, format, userID)
		if err != nil {
			return Fail[Body](err)
		}
		var params Fields
		if query != nil {
			if params, err = query(); err != nil {
				return Fail[Body](err)
			}
		}
		return CallDone(NewGet(path, params...))
	})
}

// SyncFeatures announces the account experiments.
func SyncFeatures(st *State) Protocol {
	return Op("sync_features", func() kont.Eff[Body] {
		id, _ := st.UsernameID()
		fields, err := st.authFields(F("id", id), F("experiments", Experiments))
		if err != nil {
			return Fail[Body](err)
		}
		return CallDone(NewPost("qe/sync/", Sign(fields)))
	})
}

// AutocompleteUserList lists users for mention completion.
func AutocompleteUserList() Protocol {
	return read("autocomplete_user_list", "friendships/autocomplete_user_list/?version=2", nil)
}

// TimelineFeed returns one page of the home timeline.
func TimelineFeed(st *State, maxID string) Protocol {
	return read("timeline_feed", "feed/timeline/", func() (Fields, error) {
		fs, err := ranked(st, F("ranked_content", "true"))()
		return paged(fs, maxID), err
	})
}

// TimelinePages walks the home timeline for up to limit pages.
func TimelinePages(st *State, limit int) Protocol {
	return Op("timeline_pages", func() kont.Eff[Body] {
		token, ok := st.RankToken()
		if !ok {
			return Fail[Body](ErrNotLoggedIn)
		}
		return Paginate(limit, func(maxID string) *Request {
			return NewGet("feed/timeline/", paged(Fields{F("rank_token", token), F("ranked_content", "true")}, maxID)...)
		})
	})
}

// MegaphoneLog reports the feed suggestion banner as seen. The body is
// URL-encoded, not signed.
func MegaphoneLog(st *State) Protocol {
	return Op("megaphone_log", func() kont.Eff[Body] {
		deviceID, err := st.DeviceID()
		if err != nil {
			return Fail[Body](err)
		}
		csrf, ok := st.Cookie(CookieCSRF)
		if !ok {
			return Fail[Body](ErrMissingCSRF)
		}
		seen := md5.Sum([]byte(strconv.FormatFloat(float64(time.Now().UnixMilli()), 'f', 1, 64)))
		return CallDone(NewPost("megaphone/log/", Fields{
			F("type", "feed_aysf"),
			F("action", "seen"),
			F("reason", ""),
			F("_uuid", st.DeviceUUID()),
			F("device_id", deviceID),
			F("_csrftoken", csrf),
			F("uuid", hex.EncodeToString(seen[:])),
		}.Encode()))
	})
}

// PendingInbox lists pending direct message requests.
func PendingInbox() Protocol {
	return read("pending_inbox", "direct_v2/pending_inbox/?", nil)
}

// RankedRecipients lists suggested direct recipients.
func RankedRecipients() Protocol {
	return read("ranked_recipients", "direct_v2/ranked_recipients/", func() (Fields, error) {
		return Fields{F("show_threads", "true")}, nil
	})
}

// RecentRecipients lists recent direct share recipients.
func RecentRecipients() Protocol {
	return read("recent_recipients", "direct_share/recent_recipients/", nil)
}

// Explore returns the explore feed.
func Explore() Protocol {
	return read("explore", "discover/explore/", nil)
}

// DiscoverChannels returns the channels home.
func DiscoverChannels() Protocol {
	return read("discover_channels", "discover/channels_home/", nil)
}

// Expose enrols the account in the contextual profile feed experiment.
func Expose(st *State) Protocol {
	return Op("expose", func() kont.Eff[Body] {
		id, _ := st.UsernameID()
		fields, err := st.authFields(F("id", id), F("experiment", "ig_android_profile_contextual_feed"))
		if err != nil {
			return Fail[Body](err)
		}
		return CallDone(NewPost("discover/channels_home/", Sign(fields)))
	})
}

// DirectThread returns a direct thread.
func DirectThread(threadID string) Protocol {
	return read("direct_thread", "direct_v2/threads/"+threadID+"/?", nil)
}

// DirectThreadAction applies action (e.g. "approve", "hide") to a thread.
func DirectThreadAction(st *State, threadID, action string) Protocol {
	return write(st, "direct_thread_action", "direct_v2/threads/"+threadID+"/"+action+"/")
}

// RemoveSelfTag removes the user's tag from a media.
func RemoveSelfTag(st *State, mediaID string) Protocol {
	return write(st, "remove_self_tag", "media/"+mediaID+"/remove/")
}

// MediaEdit replaces the caption of a media.
func MediaEdit(st *State, mediaID, caption string) Protocol {
	return write(st, "media_edit", "media/"+mediaID+"/edit_media/", F("caption_text", caption))
}

// MediaInfo returns a media.
func MediaInfo(st *State, mediaID string) Protocol {
	return write(st, "media_info", "media/"+mediaID+"/info/", F("media_id", mediaID))
}

// MediaDelete deletes a media.
func MediaDelete(st *State, mediaID string) Protocol {
	return write(st, "media_delete", "media/"+mediaID+"/delete/", F("media_id", mediaID))
}

// MediaComment comments on a media.
func MediaComment(st *State, mediaID, text string) Protocol {
	return write(st, "media_comment", "media/"+mediaID+"/comment/", F("comment_text", text))
}

// MediaCommentDelete deletes one comment.
func MediaCommentDelete(st *State, mediaID, commentID string) Protocol {
	return write(st, "media_comment_delete", "media/"+mediaID+"/comment/"+commentID+"/delete")
}

// MediaCommentsDelete deletes several comments at once.
func MediaCommentsDelete(st *State, mediaID string, commentIDs ...string) Protocol {
	return write(st, "media_comments_delete", "media/"+mediaID+"/comment/bulk_delete/",
		F("comment_ids_to_delete", strings.Join(commentIDs, ",")))
}

// MediaComments returns one page of comments.
func MediaComments(mediaID, maxID string) Protocol {
	return read("media_comments", "media/"+mediaID+"/comments/", func() (Fields, error) {
		return paged(Fields{F("ig_sig_key_version", SigKeyVersion)}, maxID), nil
	})
}

// MediaLikers lists the likers of a media.
func MediaLikers(mediaID string) Protocol {
	return read("media_likers", "media/"+mediaID+"/likers/", nil)
}

// Like likes a media.
func Like(st *State, mediaID string) Protocol {
	return write(st, "like", "media/"+mediaID+"/like/", F("media_id", mediaID))
}

// Unlike removes a like.
func Unlike(st *State, mediaID string) Protocol {
	return write(st, "unlike", "media/"+mediaID+"/unlike/", F("media_id", mediaID))
}

// LikedMedia returns one page of media liked by the user.
func LikedMedia(maxID string) Protocol {
	return read("liked_media", "feed/liked/", func() (Fields, error) {
		return paged(nil, maxID), nil
	})
}

// RemoveProfilePicture clears the profile picture.
func RemoveProfilePicture(st *State) Protocol {
	return write(st, "remove_profile_picture", "accounts/remove_profile_picture/")
}

// SetPrivateAccount makes the account private.
func SetPrivateAccount(st *State) Protocol {
	return write(st, "set_private_account", "accounts/set_private/")
}

// SetPublicAccount makes the account public.
func SetPublicAccount(st *State) Protocol {
	return write(st, "set_public_account", "accounts/set_public/")
}

// ProfileData returns the editable profile of the user.
func ProfileData(st *State) Protocol {
	return write(st, "profile_data", "accounts/current_user/?edit=true")
}

// Profile holds the editable fields of an account.
type Profile struct {
	URL       string
	Phone     string
	FirstName string
	Biography string
	Email     string
	Gender    int
}

// EditProfile replaces the editable profile fields.
func EditProfile(st *State, p Profile) Protocol {
	return Op("edit_profile", func() kont.Eff[Body] {
		fields, err := st.authFields(
			F("url", p.URL),
			F("phone_number", p.Phone),
			F("username", st.Username()),
			F("first_name", p.FirstName),
			F("biography", p.Biography),
			F("email", p.Email),
			F("gender", p.Gender),
		)
		if err != nil {
			return Fail[Body](err)
		}
		return CallDone(NewPost("accounts/edit_profile/", Sign(fields)))
	})
}

// ChangePassword changes the account password.
func ChangePassword(st *State, oldPassword, newPassword string) Protocol {
	return write(st, "change_password", "accounts/change_password/",
		F("old_password", oldPassword), F("new_password1", newPassword), F("new_password2", newPassword))
}

// SetNameAndPhone sets the display name and phone number.
func SetNameAndPhone(st *State, name, phone string) Protocol {
	return write(st, "set_name_and_phone", "accounts/set_phone_and_name/",
		F("first_name", name), F("phone_number", phone))
}

// UsernameInfo returns the profile of userID, or of the user when zero.
func UsernameInfo(st *State, userID int64) Protocol {
	return readUser(st, "username_info", "users/%d/info/", userID, nil)
}

// RecentActivity returns the activity inbox.
func RecentActivity() Protocol {
	return read("recent_activity", "news/inbox/?activity_module=all", nil)
}

// FollowingRecentActivity returns activity of followed accounts.
func FollowingRecentActivity(maxID string) Protocol {
	return read("following_recent_activity", "news/?", func() (Fields, error) {
		return paged(nil, maxID), nil
	})
}

// V2Inbox returns the direct inbox.
func V2Inbox() Protocol {
	return read("v2_inbox", "direct_v2/inbox/?", nil)
}

// DirectShare returns the direct share inbox.
func DirectShare() Protocol {
	return read("direct_share", "direct_share/inbox/?", nil)
}

// UserTags returns media the user is tagged in.
func UserTags(st *State, userID int64) Protocol {
	return readUser(st, "user_tags", "usertags/%d/feed/", userID, ranked(st, F("ranked_content", "true")))
}

// GeoMedia returns geotagged media of a user.
func GeoMedia(st *State, userID int64) Protocol {
	return readUser(st, "geo_media", "maps/user/%d/", userID, nil)
}

// SearchLocation searches places around a coordinate, optionally by name.
func SearchLocation(st *State, latitude, longitude float64, query string) Protocol {
	return read("search_location", "location_search/", func() (Fields, error) {
		fs, err := ranked(st,
			F("latitude", strconv.FormatFloat(latitude, 'f', -1, 64)),
			F("longitude", strconv.FormatFloat(longitude, 'f', -1, 64)),
		)()
		if query == "" {
			fs = append(fs, F("timestamp", time.Now().Unix()))
		} else {
			fs = append(fs, F("search_query", query))
		}
		return fs, err
	})
}

// FacebookUserSearch runs a blended top search.
func FacebookUserSearch(st *State, query string) Protocol {
	return read("facebook_user_search", "fbsearch/topsearch/", func() (Fields, error) {
		token, ok := st.RankToken()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return Fields{F("context", "blended"), F("query", query), F("rank_token", token)}, nil
	})
}

// SearchUsers searches accounts by name.
func SearchUsers(st *State, query string) Protocol {
	return read("search_users", "users/search/", func() (Fields, error) {
		token, ok := st.RankToken()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return Fields{
			F("ig_sig_key_version", SigKeyVersion),
			F("is_typeahead", "true"),
			F("query", query),
			F("rank_token", token),
		}, nil
	})
}

// SearchUsername returns the profile of an exact username.
func SearchUsername(username string) Protocol {
	return read("search_username", "users/"+username+"/usernameinfo/", nil)
}

// SearchTags searches hashtags.
func SearchTags(st *State, query string) Protocol {
	return read("search_tags", "tags/search/", func() (Fields, error) {
		token, ok := st.RankToken()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return Fields{F("is_typeahead", "true"), F("q", query), F("rank_token", token)}, nil
	})
}

// SearchFacebookLocation searches places by name.
func SearchFacebookLocation(st *State, query string) Protocol {
	return read("search_facebook_location", "fbsearch/places/", ranked(st, F("query", query)))
}

// ReelsTrayFeed returns the stories tray.
func ReelsTrayFeed() Protocol {
	return read("reels_tray_feed", "feed/reels_tray/", nil)
}

// UserFeed returns one page of a user's media; minTimestamp <= 0 is unset.
func UserFeed(st *State, userID int64, maxID string, minTimestamp int64) Protocol {
	return readUser(st, "user_feed", "feed/user/%d/", userID, func() (Fields, error) {
		fs, err := ranked(st, F("ranked_content", "true"))()
		fs = paged(fs, maxID)
		if minTimestamp > 0 {
			fs = append(fs, F("min_timestamp", minTimestamp))
		}
		return fs, err
	})
}

// HashtagFeed returns one page of a hashtag feed.
func HashtagFeed(hashtag, maxID string) Protocol {
	return read("hashtag_feed", "feed/tag/"+hashtag+"/", func() (Fields, error) {
		return paged(nil, maxID), nil
	})
}

// LocationFeed returns one page of a location feed.
func LocationFeed(locationID, maxID string) Protocol {
	return read("location_feed", "feed/location/"+locationID+"/", func() (Fields, error) {
		return paged(nil, maxID), nil
	})
}

// PopularFeed returns the popular feed.
func PopularFeed(st *State) Protocol {
	return read("popular_feed", "feed/popular/", func() (Fields, error) {
		token, ok := st.RankToken()
		if !ok {
			return nil, ErrNotLoggedIn
		}
		return Fields{F("people_teaser_supported", 1), F("rank_token", token), F("ranked_content", "true")}, nil
	})
}

// Followings returns one page of accounts followed by a user.
func Followings(st *State, userID int64, maxID string) Protocol {
	return readUser(st, "user_followings", "friendships/%d/following/", userID, func() (Fields, error) {
		fs, err := ranked(st)()
		return paged(fs, maxID), err
	})
}

// Followers returns one page of a user's followers.
func Followers(st *State, userID int64, maxID string) Protocol {
	return readUser(st, "user_followers", "friendships/%d/followers/", userID, func() (Fields, error) {
		fs, err := ranked(st)()
		return paged(fs, maxID), err
	})
}

// FollowersPages walks a user's followers for up to limit pages.
func FollowersPages(st *State, userID int64, limit int) Protocol {
	return Op("user_followers_pages", func() kont.Eff[Body] {
		path, err := userPath(st, "friendships/%d/followers/", userID)
		if err != nil {
			return Fail[Body](err)
		}
		token, ok := st.RankToken()
		if !ok {
			return Fail[Body](ErrNotLoggedIn)
		}
		return Paginate(limit, func(maxID string) *Request {
			return NewGet(path, paged(Fields{F("rank_token", token)}, maxID)...)
		})
	})
}

// friendship is a signed friendship mutation addressed by user id.
func friendship(st *State, name, action string, userID int64) Protocol {
	return write(st, name, fmt.Sprintf("friendships/%s/%d/", action, userID), F("user_id", userID))
}

// Follow follows a user.
func Follow(st *State, userID int64) Protocol {
	return friendship(st, "follow", "create", userID)
}

// Unfollow unfollows a user.
func Unfollow(st *State, userID int64) Protocol {
	return friendship(st, "unfollow", "destroy", userID)
}

// Block blocks a user.
func Block(st *State, userID int64) Protocol {
	return friendship(st, "block", "block", userID)
}

// Unblock unblocks a user.
func Unblock(st *State, userID int64) Protocol {
	return friendship(st, "unblock", "unblock", userID)
}

// Friendship returns the relationship with a user.
func Friendship(userID int64) Protocol {
	return read("user_friendship", fmt.Sprintf("friendships/show/%d/", userID), nil)
}

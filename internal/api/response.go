package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes {"error": msg} with status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string)      { Error(c, http.StatusBadRequest, msg) }
func Unauthorized(c *gin.Context, msg string)    { Error(c, http.StatusUnauthorized, msg) }
func Forbidden(c *gin.Context, msg string)       { Error(c, http.StatusForbidden, msg) }
func Conflict(c *gin.Context, msg string)        { Error(c, http.StatusConflict, msg) }
func TooManyRequests(c *gin.Context, msg string) { Error(c, http.StatusTooManyRequests, msg) }
func Internal(c *gin.Context, msg string)        { Error(c, http.StatusInternalServerError, msg) }

// Response messages.
const (
	msgServerError        = "서버 오류가 발생했습니다."
	msgInvalidID          = "잘못된 ID입니다."
	msgInvalidRequest     = "잘못된 요청입니다."
	msgNothingToUpdate    = "수정할 항목이 없습니다."
	msgLoginMissingFields = "아이디와 비밀번호를 입력해주세요."
	msgLoginInvalid       = "아이디 또는 비밀번호가 올바르지 않습니다."
	msgLoginInactive      = "비활성화된 계정입니다."
	msgLoginSuccess       = "로그인 성공"
	msgLoginRateLimited   = "로그인 시도가 너무 많습니다. 잠시 후 다시 시도해주세요."
	msgLogoutSuccess      = "로그아웃 되었습니다."
	msgUserListFailed     = "사용자 조회 실패"
	msgUserCreateFailed   = "사용자 생성 실패"
	msgUserCreated        = "사용자가 생성되었습니다"
	msgUserDuplicate      = "이미 존재하는 사용자 ID입니다."
	msgUserUpdateFailed   = "사용자 수정 실패"
	msgUserStatusChanged  = "상태가 변경되었습니다"
	msgUserUpdated        = "사용자 정보가 수정되었습니다"
	msgUserDeleteFailed   = "사용자 삭제 실패"
	msgUserDeleted        = "사용자가 삭제되었습니다"
	msgDuplicateCheckFail = "중복확인 실패"
	msgStatsFailed        = "통계 조회 실패"
	msgPositionListFailed = "직급 조회 실패"
	msgDocListFailed      = "서류 목록 조회 실패"
	msgDocCreateFailed    = "서류 생성 실패"
	msgDocUpdateFailed    = "서류 업데이트 실패"
	msgDocDeleteFailed    = "서류 삭제 실패"
	msgNotificationFailed = "알림 건수 조회 실패"
	msgUploadMissingFile  = "파일이 없습니다"
	msgUploadMissingPath  = "파일 경로가 없습니다"
	msgUploadSuccess      = "파일 업로드 성공"
	msgUploadFailedPrefix = "파일 업로드 실패: "
	msgUploadInfected     = "악성 파일이 감지되었습니다"
	msgUnassigned         = "미지정"
)
